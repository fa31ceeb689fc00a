package server

import (
	"encoding/json"
	"net/http"

	"github.com/swjin-lab/purchases-tracker/internal/common"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondAppError maps domain errors onto HTTP statuses.
func respondAppError(w http.ResponseWriter, err error) {
	respondError(w, common.HTTPStatus(err), err.Error())
}
