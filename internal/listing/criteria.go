// Package listing implements the record filter/sort/paginate pipeline: pure
// transforms from a point-in-time record snapshot plus user criteria to the
// ordered display rows. No stage keeps hidden state; every function is safe to
// re-run on each input change.
package listing

import (
	"time"

	"github.com/swjin-lab/purchases-tracker/constants"
)

// DateRange is an explicit user-chosen date window.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Criteria is the full set of user-chosen filter inputs.
type Criteria struct {
	DateType        constants.DateType     `json:"dateType"`
	Range           constants.RangePreset  `json:"range"`
	Custom          *DateRange             `json:"custom,omitempty"`
	Keyword         string                 `json:"keyword"`
	Target          constants.SearchTarget `json:"target"`
	OnlyOutstanding bool                   `json:"onlyOutstanding"`
}

// window resolves the effective [start, end] filter window against now.
// An explicit custom range wins over the named preset; the custom end is
// extended to the last instant of its calendar day.
func (c Criteria) window(now time.Time) (time.Time, time.Time) {
	start := startByRange(c.Range, now)
	end := now
	if c.Custom != nil {
		if !c.Custom.Start.IsZero() {
			start = c.Custom.Start
		}
		if !c.Custom.End.IsZero() {
			e := c.Custom.End
			end = time.Date(e.Year(), e.Month(), e.Day(), 23, 59, 59, 999_000_000, e.Location())
		}
	}
	return start, end
}

func startByRange(r constants.RangePreset, now time.Time) time.Time {
	switch r {
	case constants.RangeToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	case constants.RangeWeek:
		return now.AddDate(0, 0, -6)
	case constants.RangeMonth:
		return now.AddDate(0, -1, 0)
	case constants.RangeQuarter:
		return now.AddDate(0, -3, 0)
	default:
		return time.Time{}
	}
}
