// Package httpapi exposes the catalog over JSON HTTP.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pauljones0/deal-finder/internal/auth"
	"github.com/pauljones0/deal-finder/internal/catalog"
	"github.com/pauljones0/deal-finder/internal/scraper"
)

// Deps are the collaborators of the HTTP layer. Auth and Previewer may be nil,
// in which case the routes needing them answer 503.
type Deps struct {
	Catalog        *catalog.Service
	Auth           *auth.Authorizer
	Previewer      scraper.Previewer
	RequestTimeout time.Duration
}

// Server wraps the HTTP server and its router.
type Server struct {
	http *http.Server
}

// NewRouter builds the router with global middlewares and all routes.
func NewRouter(d Deps) http.Handler {
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 10 * time.Second
	}
	h := &handlers{deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(d.RequestTimeout))

	r.Get("/health", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/deals", h.listDeals)
		r.Get("/deals/grouped", h.listGroupedDeals)
		r.Get("/deals/top", h.topDeal)
		r.Get("/categories", h.listCategories)
		r.Get("/settings/footer", h.footerSettings)

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.requireAdmin)
			r.Get("/overview", h.adminOverview)
			r.Post("/deals", h.createDeal)
			r.Post("/deals/categorize", h.categorizeDeal)
			r.Post("/deals/purge", h.purgeDeals)
			r.Delete("/deals/{id}", h.deleteDeal)
			r.Post("/categories", h.addCategory)
			r.Put("/settings/footer", h.updateFooterSettings)
			r.Get("/preview", h.preview)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})
	return r
}

// New builds the HTTP server listening on addr.
func New(addr string, d Deps) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(d),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
