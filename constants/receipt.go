package constants

// ReceiptDateLabel precedes the purchase timestamp on scanned wholesale
// receipts ("reception time").
const ReceiptDateLabel = "수취시간"

// ReceiptAmountMarker marks the start of the line-item table; item tokens are
// parsed from the text following its first occurrence.
const ReceiptAmountMarker = "금액"

// VendorStopKeywords terminate the vendor-name scan: the vendor is the last
// non-blank line seen before the first line containing any of these.
var VendorStopKeywords = []string{"전화", "주소", "매장", "TEL"}
