package listing

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/swjin-lab/purchases-tracker/constants"
	"github.com/swjin-lab/purchases-tracker/internal/entity"
)

// Flatten expands records into display rows. Records are pre-sorted by
// purchase date descending before expansion; per-record item order is kept.
// The pre-sort only determines tie-break order for the subsequent Sort.
func Flatten(records []entity.PurchaseRecord) []entity.DisplayRow {
	ordered := make([]entity.PurchaseRecord, len(records))
	copy(ordered, records)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[j].Date.Before(ordered[i].Date)
	})

	var rows []entity.DisplayRow
	for _, rec := range ordered {
		for _, it := range rec.Items {
			rows = append(rows, entity.DisplayRow{
				RecordID:     rec.ID,
				Date:         rec.Date,
				CreatedAt:    rec.CreatedAt,
				Vendor:       rec.Vendor,
				ReceiptImage: rec.ReceiptImage,
				PurchaseItem: it,
			})
		}
	}
	return rows
}

// Sort orders rows by the given key and direction. String columns compare
// with Korean collation, timestamps chronologically, numeric columns
// numerically. The sort is stable, so ties keep their flatten order.
// An unknown key falls back to the default ordering (date descending).
func Sort(rows []entity.DisplayRow, key constants.SortKey, dir constants.SortDirection) []entity.DisplayRow {
	out := make([]entity.DisplayRow, len(rows))
	copy(out, rows)

	less := lessFunc(key)
	if less == nil {
		key, dir = constants.SortByDate, constants.SortDesc
		less = lessFunc(key)
	}
	if dir == constants.SortDesc {
		inner := less
		less = func(a, b *entity.DisplayRow) bool { return inner(b, a) }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func lessFunc(key constants.SortKey) func(a, b *entity.DisplayRow) bool {
	switch key {
	case constants.SortByDate:
		return func(a, b *entity.DisplayRow) bool { return a.Date.Before(b.Date) }
	case constants.SortByCreatedAt:
		return func(a, b *entity.DisplayRow) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case constants.SortByVendor:
		col := newCollator()
		return func(a, b *entity.DisplayRow) bool { return col.CompareString(a.Vendor, b.Vendor) < 0 }
	case constants.SortByName:
		col := newCollator()
		return func(a, b *entity.DisplayRow) bool { return col.CompareString(a.Name, b.Name) < 0 }
	case constants.SortByUnitPrice:
		return func(a, b *entity.DisplayRow) bool { return a.UnitPrice < b.UnitPrice }
	case constants.SortByQuantity:
		return func(a, b *entity.DisplayRow) bool { return a.Quantity < b.Quantity }
	case constants.SortByTotalAmount:
		return func(a, b *entity.DisplayRow) bool { return a.TotalAmount < b.TotalAmount }
	case constants.SortByMissingQuantity:
		return func(a, b *entity.DisplayRow) bool { return a.MissingQuantity < b.MissingQuantity }
	default:
		return nil
	}
}

func newCollator() *collate.Collator {
	return collate.New(language.Korean)
}
