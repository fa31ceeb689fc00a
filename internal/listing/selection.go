package listing

import "github.com/swjin-lab/purchases-tracker/internal/entity"

// RowKey addresses one display row by identity, not position, so a selection
// survives re-sorting and re-paging.
type RowKey struct {
	RecordID string `json:"recordId"`
	ItemID   string `json:"itemId"`
}

// Selection is the set of selected rows.
type Selection map[RowKey]struct{}

func NewSelection() Selection { return make(Selection) }

func (s Selection) Has(k RowKey) bool {
	_, ok := s[k]
	return ok
}

// Toggle flips the membership of one row.
func (s Selection) Toggle(k RowKey) {
	if s.Has(k) {
		delete(s, k)
	} else {
		s[k] = struct{}{}
	}
}

// SelectAll replaces the selection with exactly the given rows — the rows of
// the current sorted/filtered view, never the unfiltered universe.
func (s Selection) SelectAll(rows []entity.DisplayRow) {
	s.Clear()
	for _, r := range rows {
		s[RowKey{RecordID: r.RecordID, ItemID: r.ItemID}] = struct{}{}
	}
}

func (s Selection) Clear() {
	for k := range s {
		delete(s, k)
	}
}

func (s Selection) Len() int { return len(s) }

// Keys returns the selected row keys in unspecified order.
func (s Selection) Keys() []RowKey {
	out := make([]RowKey, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// Prune drops entries whose underlying item no longer exists in the records
// snapshot. Delete operations call this as part of the same step.
func (s Selection) Prune(records []entity.PurchaseRecord) {
	live := make(map[RowKey]struct{})
	for _, rec := range records {
		for _, it := range rec.Items {
			live[RowKey{RecordID: rec.ID, ItemID: it.ItemID}] = struct{}{}
		}
	}
	for k := range s {
		if _, ok := live[k]; !ok {
			delete(s, k)
		}
	}
}
