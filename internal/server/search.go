package server

import (
	"encoding/json"
	"net/http"

	"github.com/swjin-lab/purchases-tracker/constants"
	"github.com/swjin-lab/purchases-tracker/internal/listing"
	"github.com/swjin-lab/purchases-tracker/internal/purchase"
)

type searchRequest struct {
	Criteria listing.Criteria        `json:"criteria"`
	SortKey  constants.SortKey       `json:"sortKey"`
	SortDir  constants.SortDirection `json:"sortDir"`
	Page     int                     `json:"page"`
	PerPage  int                     `json:"perPage"`
}

// normalize falls back to defined defaults for missing or unknown inputs;
// the pipeline itself is total over its domain.
func (r *searchRequest) normalize() {
	if r.Criteria.DateType == "" {
		r.Criteria.DateType = constants.DateTypeAll
	}
	if r.Criteria.Range == "" {
		r.Criteria.Range = constants.RangeToday
	}
	if r.Criteria.Target == "" {
		r.Criteria.Target = constants.TargetVendor
	}
	if r.SortKey == "" {
		r.SortKey = constants.SortByDate
	}
	if r.SortDir != constants.SortAsc {
		r.SortDir = constants.SortDesc
	}
	if r.Page < 1 {
		r.Page = 1
	}
	r.PerPage = listing.NormalizePerPage(r.PerPage)
}

// searchRecords runs the full filter → flatten → sort → paginate pipeline
// over the caller's record snapshot.
func (s *Server) searchRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.normalize()

	records, err := s.purchases.ListByUser(r.Context(), userID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	filtered := listing.Filter(records, req.Criteria, s.now())
	rows := listing.Sort(listing.Flatten(filtered), req.SortKey, req.SortDir)
	page := listing.Paginate(rows, req.Page, req.PerPage)

	respondJSON(w, http.StatusOK, page)
}

type bulkRequest struct {
	Keys []listing.RowKey `json:"keys"`
}

// bulkDelete removes the selected rows, grouped per record; a record whose
// last item is removed is deleted entirely. One persistence command is
// issued per affected record; records that vanished concurrently are
// skipped, not errors.
func (s *Server) bulkDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sel := listing.NewSelection()
	for _, k := range req.Keys {
		sel[k] = struct{}{}
	}

	records, err := s.purchases.ListByUser(r.Context(), userID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	_, outcome := purchase.DeleteSelected(records, sel)

	for i := range outcome.Updated {
		if err := s.purchases.Replace(r.Context(), &outcome.Updated[i]); err != nil {
			respondAppError(w, err)
			return
		}
	}
	for _, id := range outcome.Deleted {
		if err := s.purchases.Delete(r.Context(), userID, id); err != nil {
			respondAppError(w, err)
			return
		}
	}

	s.logger.Info("records.bulk_delete.ok",
		"user_id", userID,
		"selected", len(req.Keys),
		"updated_records", len(outcome.Updated),
		"deleted_records", len(outcome.Deleted),
	)
	respondJSON(w, http.StatusOK, map[string]any{
		"updatedRecords": len(outcome.Updated),
		"deletedRecords": outcome.Deleted,
	})
}

// bulkReceive marks every selected outstanding row as received
// (missingQuantity = 0), one single-field update per item.
func (s *Server) bulkReceive(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	received := 0
	for _, k := range req.Keys {
		err := s.purchases.SetMissingQuantity(r.Context(), userID, k.RecordID, k.ItemID, 0)
		if err != nil {
			// already-deleted rows are a no-op, not an error
			continue
		}
		received++
	}

	s.logger.Info("records.bulk_receive.ok", "user_id", userID, "selected", len(req.Keys), "received", received)
	respondJSON(w, http.StatusOK, map[string]int{"received": received})
}
