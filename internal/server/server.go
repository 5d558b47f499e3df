// Package server exposes the report store and the EIC to EICR export
// tooling over HTTP.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/voltcert/certsync/internal/config"
	"github.com/voltcert/certsync/internal/report"
)

// Server routes API requests to a report store.
type Server struct {
	store   report.Store
	cfg     config.ServerConfig
	limiter *clientLimiter
}

// New builds a Server around the given store.
func New(store report.Store, cfg config.ServerConfig) *Server {
	return &Server{
		store:   store,
		cfg:     cfg,
		limiter: newClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	}
}

// Router assembles the chi router with middleware and all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Owner-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limiter.middleware)

		r.Get("/checklist", s.handleChecklist)

		r.Route("/export", func(r chi.Router) {
			r.Post("/validate", s.handleExportValidate)
			r.Post("/transform", s.handleExportTransform)
			r.Post("/summary", s.handleExportSummary)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(requireOwner)

			r.Get("/", s.handleList)
			r.Post("/", s.handleCreate)
			r.Get("/find", s.handleFindByCertificateNumber)
			r.Get("/register.xlsx", s.handleRegister)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetPayload)
				r.Put("/", s.handleUpdate)
				r.Delete("/", s.handleSoftDelete)
				r.Put("/versioned", s.handleVersionedUpdate)
				r.Get("/version", s.handleGetVersion)
				r.Post("/version/check", s.handleVersionCheck)
			})
		})
	})

	return r
}
