package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PurchaseItem is one product line within a purchase record.
type PurchaseItem struct {
	ItemID          string  `json:"itemId"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Color           string  `json:"color"`
	Size            string  `json:"size"`
	Options         string  `json:"options"`
	UnitPrice       float64 `json:"unitPrice"`
	Quantity        int     `json:"quantity"`
	TotalAmount     float64 `json:"totalAmount"`
	MissingQuantity int     `json:"missingQuantity"`
}

// Normalize recomputes the derived total. Every mutation path must call this
// so that TotalAmount == UnitPrice * Quantity holds after any edit.
func (i *PurchaseItem) Normalize() {
	i.TotalAmount = i.UnitPrice * float64(i.Quantity)
}

// PurchaseRecord is one purchase batch from one vendor at one time.
// A record with zero items is treated as deleted.
type PurchaseRecord struct {
	ID           string         `json:"id"`
	UserID       uuid.UUID      `json:"-"`
	Date         time.Time      `json:"date"`
	CreatedAt    time.Time      `json:"createdAt"`
	Vendor       string         `json:"vendor"`
	ReceiptImage string         `json:"receiptImage"`
	Items        []PurchaseItem `json:"items"`
}

// Normalize recomputes derived totals on all items.
func (r *PurchaseRecord) Normalize() {
	for idx := range r.Items {
		r.Items[idx].Normalize()
	}
}

// DisplayRow is the flattened (record × item) projection used for display,
// sorting, selection and export. Derived, never persisted.
type DisplayRow struct {
	RecordID     string    `json:"recordId"`
	Date         time.Time `json:"date"`
	CreatedAt    time.Time `json:"createdAt"`
	Vendor       string    `json:"vendor"`
	ReceiptImage string    `json:"receiptImage"`
	PurchaseItem
}

// NewRecordID derives the record identifier from the purchase timestamp.
func NewRecordID(date time.Time) string {
	return date.Format("200601021504")
}

// NextItemID returns the identifier for the next item appended to the record:
// parent ID plus a zero-padded 3-digit sequence number.
func NextItemID(r *PurchaseRecord) string {
	maxSeq := 0
	for _, it := range r.Items {
		if len(it.ItemID) <= len(r.ID) {
			continue
		}
		var seq int
		if _, err := fmt.Sscanf(it.ItemID[len(r.ID):], "%d", &seq); err == nil && seq > maxSeq {
			maxSeq = seq
		}
	}
	return fmt.Sprintf("%s%03d", r.ID, maxSeq+1)
}
