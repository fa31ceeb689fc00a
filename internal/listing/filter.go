package listing

import (
	"strings"
	"time"

	"github.com/swjin-lab/purchases-tracker/constants"
	"github.com/swjin-lab/purchases-tracker/internal/entity"
)

// Filter returns the records matching the criteria, each carrying only its
// surviving items. Records whose items are all filtered out are dropped.
// The input slice is never mutated.
func Filter(records []entity.PurchaseRecord, c Criteria, now time.Time) []entity.PurchaseRecord {
	start, end := c.window(now)
	keyword := strings.ToLower(strings.TrimSpace(c.Keyword))

	out := make([]entity.PurchaseRecord, 0, len(records))
	for _, rec := range records {
		if c.DateType != constants.DateTypeAll {
			cmp := rec.Date
			if c.DateType == constants.DateTypeRegister {
				cmp = rec.CreatedAt
			}
			if cmp.Before(start) || cmp.After(end) {
				continue
			}
		}

		items := make([]entity.PurchaseItem, 0, len(rec.Items))
		for _, it := range rec.Items {
			if !matchesKeyword(rec.Vendor, it.Name, keyword, c.Target) {
				continue
			}
			if c.OnlyOutstanding && it.MissingQuantity <= 0 {
				continue
			}
			items = append(items, it)
		}
		if len(items) == 0 {
			continue
		}

		kept := rec
		kept.Items = items
		out = append(out, kept)
	}
	return out
}

func matchesKeyword(vendor, name, keyword string, target constants.SearchTarget) bool {
	if keyword == "" {
		return true
	}
	haystack := vendor
	if target == constants.TargetProduct {
		haystack = name
	}
	return strings.Contains(strings.ToLower(haystack), keyword)
}
