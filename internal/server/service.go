// Package server exposes the HTTP API: auth, purchase-record CRUD, the
// search pipeline, bulk operations, receipt scanning and XLSX export.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/swjin-lab/purchases-tracker/internal/common"
	"github.com/swjin-lab/purchases-tracker/internal/export"
	"github.com/swjin-lab/purchases-tracker/internal/ocr"
	"github.com/swjin-lab/purchases-tracker/internal/repository"
)

// Server bundles the handler dependencies.
type Server struct {
	users     repository.UserRepository
	purchases repository.PurchaseRepository
	detector  ocr.TextDetector // nil disables the scan endpoint
	exporter  *export.Service
	secret    string
	tokenTTL  time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func New(
	users repository.UserRepository,
	purchases repository.PurchaseRepository,
	detector ocr.TextDetector,
	exporter *export.Service,
	cfg common.ServerConfig,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Server{
		users:     users,
		purchases: purchases,
		detector:  detector,
		exporter:  exporter,
		secret:    cfg.JWTSecret,
		tokenTTL:  ttl,
		logger:    logger,
		now:       time.Now,
	}
}

// Router wires up the HTTP API.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", s.listRecords)
			r.Post("/", s.createRecord)
			r.Post("/search", s.searchRecords)
			r.Post("/bulk-delete", s.bulkDelete)
			r.Post("/bulk-receive", s.bulkReceive)
			r.Post("/export", s.exportRecords)
			r.Get("/{id}", s.getRecord)
			r.Put("/{id}", s.replaceRecord)
			r.Delete("/{id}", s.deleteRecord)
			r.Patch("/{id}/items/{itemId}/missing", s.patchMissingQuantity)
		})

		r.Post("/receipts/scan", s.scanReceipt)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
