package constants

// DateType selects which record timestamp the date filter compares against.
type DateType string

// Stable values (wire format for the search API).
const (
	DateTypeAll      DateType = "all"      // date filter bypassed
	DateTypePurchase DateType = "purchase" // compare against record.date
	DateTypeRegister DateType = "register" // compare against record.createdAt
)

// RangePreset is a named relative date range resolved against "now".
type RangePreset string

const (
	RangeToday   RangePreset = "today"
	RangeWeek    RangePreset = "week"
	RangeMonth   RangePreset = "month"
	RangeQuarter RangePreset = "quarter"
)

// SearchTarget selects the field the keyword is matched against.
type SearchTarget string

const (
	TargetVendor  SearchTarget = "vendor"
	TargetProduct SearchTarget = "product"
)

// SortKey is one of the eight sortable display-row columns.
type SortKey string

const (
	SortByDate            SortKey = "date"
	SortByCreatedAt       SortKey = "createdAt"
	SortByVendor          SortKey = "vendor"
	SortByName            SortKey = "name"
	SortByUnitPrice       SortKey = "unitPrice"
	SortByQuantity        SortKey = "quantity"
	SortByTotalAmount     SortKey = "totalAmount"
	SortByMissingQuantity SortKey = "missingQuantity"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// PageSizes holds the allowed per-page values for the record table.
var PageSizes = []int{50, 100, 150, 200}

const DefaultPageSize = 100
