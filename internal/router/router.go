package router

import (
	"net/http"

	"vtz-stock-sync/internal/handler"
	"vtz-stock-sync/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler        *handler.Handler
	ProductHandler *handler.ProductHandler
	RecordsHandler *handler.RecordsHandler
	SyncHandler    *handler.SyncHandler
	ImportHandler  *handler.ImportHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes). RequestID goes first
	// so both the recovery and logging middleware can report the rid.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-User"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Connectivity indicator polled by the UI header
	if cfg.SyncHandler != nil {
		r.Get("/api/status", cfg.SyncHandler.Status)
	}

	// Static files (inventory UI)
	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
		}

		if cfg.SyncHandler != nil {
			r.Post("/sync", cfg.SyncHandler.Trigger)
		}

		if cfg.ProductHandler != nil {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", cfg.ProductHandler.List)
				r.Post("/", cfg.ProductHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", cfg.ProductHandler.Get)
					r.Put("/", cfg.ProductHandler.Update)
					r.Delete("/", cfg.ProductHandler.Delete)
					r.Post("/merge", cfg.ProductHandler.Merge)
					r.Post("/adjust", cfg.ProductHandler.Adjust)
					r.Post("/sell", cfg.ProductHandler.Sell)
				})
			})
			r.Get("/alerts", cfg.ProductHandler.Alerts)
		}

		if cfg.RecordsHandler != nil {
			r.Get("/sales", cfg.RecordsHandler.Sales)
			r.Get("/logs", cfg.RecordsHandler.Logs)
			r.Route("/export", func(r chi.Router) {
				r.Get("/csv", cfg.RecordsHandler.ExportCSV)
				r.Get("/json", cfg.RecordsHandler.ExportJSON)
			})
		}

		if cfg.ImportHandler != nil {
			r.Route("/import", func(r chi.Router) {
				r.Post("/preview", cfg.ImportHandler.Preview)
				r.Post("/commit", cfg.ImportHandler.Commit)
			})
		}
	})

	return r
}
