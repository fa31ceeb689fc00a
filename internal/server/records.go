package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swjin-lab/purchases-tracker/internal/entity"
)

type recordItemPayload struct {
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

type recordPayload struct {
	Date         string              `json:"date"`
	Vendor       string              `json:"vendor"`
	ReceiptImage string              `json:"receiptImage"`
	Items        []recordItemPayload `json:"items"`
}

// decodeRecordPayload validates the raw body against the record schema and
// decodes it. The outstanding count can never exceed the ordered quantity.
func decodeRecordPayload(r *http.Request) (*recordPayload, time.Time, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, 1<<20))
	if err != nil {
		return nil, time.Time{}, err
	}
	if err := validateRecordPayload(raw); err != nil {
		return nil, time.Time{}, err
	}
	var p recordPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, time.Time{}, err
	}
	date, err := parseFlexibleTime(p.Date)
	if err != nil {
		return nil, time.Time{}, err
	}
	for i := range p.Items {
		if p.Items[i].MissingQuantity > p.Items[i].Quantity {
			p.Items[i].MissingQuantity = p.Items[i].Quantity
		}
	}
	return &p, date, nil
}

// parseFlexibleTime accepts RFC3339 and the datetime-local shape the form
// submits (no zone, minute precision).
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", s)
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	records, err := s.purchases.ListByUser(r.Context(), userID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	rec, err := s.purchases.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) createRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	p, date, err := decodeRecordPayload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec := entity.PurchaseRecord{
		ID:           entity.NewRecordID(date),
		UserID:       userID,
		Date:         date,
		CreatedAt:    s.now().UTC(),
		Vendor:       p.Vendor,
		ReceiptImage: p.ReceiptImage,
	}
	for _, it := range p.Items {
		item := entity.PurchaseItem{
			ItemID:          entity.NextItemID(&rec),
			Name:            it.Name,
			Category:        it.Category,
			Color:           it.Color,
			Size:            it.Size,
			Options:         it.Options,
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			MissingQuantity: it.MissingQuantity,
		}
		rec.Items = append(rec.Items, item)
	}
	rec.Normalize()

	if err := s.purchases.Create(r.Context(), &rec); err != nil {
		respondAppError(w, err)
		return
	}
	s.logger.Info("records.create.ok", "user_id", userID, "record_id", rec.ID, "items", len(rec.Items))
	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) replaceRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	p, date, err := decodeRecordPayload(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	recordID := chi.URLParam(r, "id")
	existing, err := s.purchases.Get(r.Context(), userID, recordID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	rec := entity.PurchaseRecord{
		ID:           recordID,
		UserID:       userID,
		Date:         date,
		CreatedAt:    existing.CreatedAt, // immutable once set
		Vendor:       p.Vendor,
		ReceiptImage: p.ReceiptImage,
	}
	for _, it := range p.Items {
		item := entity.PurchaseItem{
			ItemID:          it.ItemID,
			Name:            it.Name,
			Category:        it.Category,
			Color:           it.Color,
			Size:            it.Size,
			Options:         it.Options,
			UnitPrice:       it.UnitPrice,
			Quantity:        it.Quantity,
			MissingQuantity: it.MissingQuantity,
		}
		if item.ItemID == "" {
			item.ItemID = entity.NextItemID(&rec)
		}
		rec.Items = append(rec.Items, item)
	}
	rec.Normalize()

	if err := s.purchases.Replace(r.Context(), &rec); err != nil {
		respondAppError(w, err)
		return
	}
	s.logger.Info("records.replace.ok", "user_id", userID, "record_id", rec.ID, "items", len(rec.Items))
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	recordID := chi.URLParam(r, "id")
	if err := s.purchases.Delete(r.Context(), userID, recordID); err != nil {
		respondAppError(w, err)
		return
	}
	s.logger.Info("records.delete.ok", "user_id", userID, "record_id", recordID)
	respondJSON(w, http.StatusOK, map[string]string{"deleted": recordID})
}

func (s *Server) patchMissingQuantity(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req struct {
		MissingQuantity int `json:"missingQuantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MissingQuantity < 0 {
		respondError(w, http.StatusBadRequest, "missingQuantity must be a non-negative integer")
		return
	}
	recordID := chi.URLParam(r, "id")
	itemID := chi.URLParam(r, "itemId")
	if err := s.purchases.SetMissingQuantity(r.Context(), userID, recordID, itemID, req.MissingQuantity); err != nil {
		respondAppError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"recordId":        recordID,
		"itemId":          itemID,
		"missingQuantity": req.MissingQuantity,
	})
}
