package listing

import (
	"time"

	"github.com/swjin-lab/purchases-tracker/constants"
	"github.com/swjin-lab/purchases-tracker/internal/entity"
)

// View implements the search commit semantics: criteria changes recompute a
// candidate on every input change, but the displayed list only advances to
// that candidate on an explicit Search. Until then the previously committed
// list stays visible.
type View struct {
	committed []entity.PurchaseRecord
	applied   bool
}

// NewView starts with the full snapshot committed.
func NewView(records []entity.PurchaseRecord) *View {
	return &View{committed: records}
}

// Candidate computes the rows the next Search would commit.
func Candidate(records []entity.PurchaseRecord, c Criteria, now time.Time) []entity.PurchaseRecord {
	return Filter(records, c, now)
}

// Search commits the candidate for the given criteria and marks the search
// as applied.
func (v *View) Search(records []entity.PurchaseRecord, c Criteria, now time.Time) {
	v.committed = Filter(records, c, now)
	v.applied = true
}

// Invalidate clears the applied flag after any criteria change. The committed
// list is deliberately left untouched until the next explicit Search.
func (v *View) Invalidate() { v.applied = false }

// Applied reports whether the currently visible list matches an explicit
// search (drives the search affordance, nothing else).
func (v *View) Applied() bool { return v.applied }

// Committed returns the committed record list.
func (v *View) Committed() []entity.PurchaseRecord { return v.committed }

// Rows flattens and sorts the committed list with the active sort key. The
// active key always re-sorts the committed rows, superseding the flatten
// stage's date-descending pre-sort except for tie-breaks.
func (v *View) Rows(key constants.SortKey, dir constants.SortDirection) []entity.DisplayRow {
	return Sort(Flatten(v.committed), key, dir)
}
