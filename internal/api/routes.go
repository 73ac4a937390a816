// Package api provides the HTTP handlers of the isoplane server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"isoplane/internal/cache"
	"isoplane/internal/config"
	"isoplane/internal/raster"
)

// RouterConfig contains router configuration.
type RouterConfig struct {
	Config   *config.Config
	Cache    *cache.Manager
	Renderer *raster.Renderer
	Logger   *slog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Config == nil {
		cfg.Config = config.DefaultConfig()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = raster.NewRenderer(raster.DefaultConfig())
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	h := &handlers{
		cfg:      cfg.Config,
		cache:    cfg.Cache,
		renderer: cfg.Renderer,
		log:      cfg.Logger,
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json", "text/plain"))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Config.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/fields", h.listFields)
		r.Get("/contour", h.getContour)
		r.Get("/frame.png", h.getFrame)
		if h.cache != nil {
			r.Get("/cache/stats", h.cacheStats)
		}
	})

	return r
}
