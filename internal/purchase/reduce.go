// Package purchase holds the pure mutation commands over a purchase-record
// snapshot. Callers apply a command to an in-memory snapshot, then persist
// the per-record outcomes through the repository; no ambient shared state.
package purchase

import (
	"time"

	"github.com/swjin-lab/purchases-tracker/internal/entity"
	"github.com/swjin-lab/purchases-tracker/internal/listing"
)

// Add appends a new record, stamping CreatedAt and normalizing item totals.
func Add(records []entity.PurchaseRecord, rec entity.PurchaseRecord, now time.Time) []entity.PurchaseRecord {
	rec.CreatedAt = now
	rec.Normalize()
	out := make([]entity.PurchaseRecord, 0, len(records)+1)
	out = append(out, records...)
	return append(out, rec)
}

// Replace swaps the record with the same ID. Totals are renormalized.
// Returns false when the record no longer exists (no-op).
func Replace(records []entity.PurchaseRecord, rec entity.PurchaseRecord) ([]entity.PurchaseRecord, bool) {
	out := make([]entity.PurchaseRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].ID == rec.ID {
			rec.Normalize()
			out[i] = rec
			return out, true
		}
	}
	return out, false
}

// Delete removes the record with the given ID.
func Delete(records []entity.PurchaseRecord, recordID string) []entity.PurchaseRecord {
	out := make([]entity.PurchaseRecord, 0, len(records))
	for _, r := range records {
		if r.ID != recordID {
			out = append(out, r)
		}
	}
	return out
}

// SetMissingQuantity updates one item's outstanding count. Missing record or
// item is a no-op.
func SetMissingQuantity(records []entity.PurchaseRecord, recordID, itemID string, qty int) []entity.PurchaseRecord {
	out := make([]entity.PurchaseRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].ID != recordID {
			continue
		}
		items := make([]entity.PurchaseItem, len(out[i].Items))
		copy(items, out[i].Items)
		for j := range items {
			if items[j].ItemID == itemID {
				items[j].MissingQuantity = qty
			}
		}
		out[i].Items = items
	}
	return out
}

// BulkOutcome reports the per-record effects of a bulk delete so the caller
// can issue one discrete persistence command per affected record.
type BulkOutcome struct {
	Updated []entity.PurchaseRecord // records left with a reduced item list
	Deleted []string                // record IDs whose last item was removed
}

// DeleteSelected removes the selected (record, item) pairs, grouped by
// record. A record left with zero items is deleted entirely. The snapshot is
// transformed atomically; keys naming a vanished record are no-ops. The
// selection is pruned against the resulting snapshot in the same step.
func DeleteSelected(records []entity.PurchaseRecord, sel listing.Selection) ([]entity.PurchaseRecord, BulkOutcome) {
	byRecord := make(map[string]map[string]struct{})
	for _, k := range sel.Keys() {
		if byRecord[k.RecordID] == nil {
			byRecord[k.RecordID] = make(map[string]struct{})
		}
		byRecord[k.RecordID][k.ItemID] = struct{}{}
	}

	var outcome BulkOutcome
	out := make([]entity.PurchaseRecord, 0, len(records))
	for _, rec := range records {
		doomed, ok := byRecord[rec.ID]
		if !ok {
			out = append(out, rec)
			continue
		}
		remaining := make([]entity.PurchaseItem, 0, len(rec.Items))
		for _, it := range rec.Items {
			if _, del := doomed[it.ItemID]; !del {
				remaining = append(remaining, it)
			}
		}
		if len(remaining) == 0 {
			outcome.Deleted = append(outcome.Deleted, rec.ID)
			continue
		}
		rec.Items = remaining
		outcome.Updated = append(outcome.Updated, rec)
		out = append(out, rec)
	}

	sel.Prune(out)
	return out, outcome
}

// MarkReceived zeroes MissingQuantity for every selected row. Independent
// per item; keys naming vanished rows are no-ops.
func MarkReceived(records []entity.PurchaseRecord, sel listing.Selection) ([]entity.PurchaseRecord, []entity.PurchaseRecord) {
	selected := make(map[listing.RowKey]struct{}, sel.Len())
	for _, k := range sel.Keys() {
		selected[k] = struct{}{}
	}

	out := make([]entity.PurchaseRecord, len(records))
	copy(out, records)
	var touched []entity.PurchaseRecord
	for i := range out {
		changed := false
		items := make([]entity.PurchaseItem, len(out[i].Items))
		copy(items, out[i].Items)
		for j := range items {
			key := listing.RowKey{RecordID: out[i].ID, ItemID: items[j].ItemID}
			if _, ok := selected[key]; ok && items[j].MissingQuantity != 0 {
				items[j].MissingQuantity = 0
				changed = true
			}
		}
		if changed {
			out[i].Items = items
			touched = append(touched, out[i])
		}
	}
	return out, touched
}
