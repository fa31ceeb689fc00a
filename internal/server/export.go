package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/swjin-lab/purchases-tracker/internal/export"
	"github.com/swjin-lab/purchases-tracker/internal/listing"
)

type exportRequest struct {
	// When set, the export contains the filtered (unpaginated) row set;
	// otherwise the full record list is flattened and exported.
	Criteria *listing.Criteria `json:"criteria,omitempty"`
}

func (s *Server) exportRecords(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	var req exportRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	records, err := s.purchases.ListByUser(r.Context(), userID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	if len(records) == 0 {
		respondError(w, http.StatusNotFound, "no records to export")
		return
	}
	if req.Criteria != nil {
		records = listing.Filter(records, *req.Criteria, s.now())
	}

	data, err := s.exporter.WorkbookFromRows(listing.Flatten(records))
	if err != nil {
		respondAppError(w, err)
		return
	}

	name := export.Filename(s.now())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(name)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
