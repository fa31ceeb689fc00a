package server

import (
	"io"
	"net/http"

	"github.com/swjin-lab/purchases-tracker/internal/extract"
)

// maxReceiptImageBytes caps uploaded receipt images (Vision rejects larger
// payloads anyway).
const maxReceiptImageBytes = 10 << 20

// scanReceipt accepts a multipart receipt image, runs OCR, and returns the
// extracted purchase draft. The draft is a pre-fill suggestion for the
// add-purchase form; nothing is persisted here.
func (s *Server) scanReceipt(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.userID(r); !ok {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if s.detector == nil {
		respondError(w, http.StatusServiceUnavailable, "receipt scanning is not configured")
		return
	}

	if err := r.ParseMultipartForm(maxReceiptImageBytes); err != nil {
		respondError(w, http.StatusBadRequest, "expected multipart form with an image field")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxReceiptImageBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "reading image failed")
		return
	}

	text, err := s.detector.DetectText(r.Context(), image)
	if err != nil {
		s.logger.Error("receipts.scan.ocr_failed", "error", err)
		respondError(w, http.StatusBadGateway, "text recognition failed")
		return
	}

	draft := extract.Parse(text)
	s.logger.Info("receipts.scan.ok",
		"text_bytes", len(text),
		"items", len(draft.Items),
		"vendor_found", draft.VendorName != "",
	)
	respondJSON(w, http.StatusOK, draft)
}
