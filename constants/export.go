package constants

// ExportSheetName is the single worksheet name of the XLSX export.
const ExportSheetName = "사입내역"

// ExportHeaders is the fixed header row of the XLSX export, one column per
// display-row field, in table order.
var ExportHeaders = []string{
	"사입번호",
	"사입일시",
	"등록일시",
	"거래처명",
	"상품사입번호",
	"상품명",
	"구분",
	"컬러",
	"사이즈",
	"옵션",
	"단가",
	"수량",
	"합계금액",
	"미송수량",
}

// ExportFilePrefix is the attachment filename prefix; the full name is
// <prefix>_YYMMDD_HHMMSS.xlsx.
const ExportFilePrefix = "사입내역"
