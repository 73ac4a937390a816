// Command isoplane draws the isolines of a scalar field. By default it
// opens an interactive terminal view; -export writes one PNG frame and
// -serve exposes frames and contours over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"isoplane/internal/api"
	"isoplane/internal/cache"
	"isoplane/internal/config"
	"isoplane/internal/contour"
	"isoplane/internal/field"
	"isoplane/internal/frame"
	"isoplane/internal/geom"
	"isoplane/internal/plane"
	"isoplane/internal/raster"
	"isoplane/internal/tui"
)

func main() {
	configPath := flag.String("config", "isoplane.yaml", "Path to configuration file")
	export := flag.String("export", "", "Write a single PNG frame to this path and exit")
	serve := flag.Bool("serve", false, "Serve frames and contours over HTTP")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch {
	case *export != "":
		contour.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
		if err := exportFrame(cfg, *export); err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		log.Printf("Wrote %s (%dx%d)", *export, cfg.Export.Width, cfg.Export.Height)
	case *serve:
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		contour.SetLogger(logger)
		runServer(cfg, logger)
	default:
		if os.Getenv("DEBUG") != "" {
			f, err := tea.LogToFile("isoplane-debug.log", "debug")
			if err != nil {
				log.Fatalf("Failed to open debug log: %v", err)
			}
			defer f.Close()
			contour.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
		m, err := tui.New(cfg)
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
			log.Fatal(err)
		}
	}
}

func exportFrame(cfg *config.Config, path string) error {
	f, err := field.Lookup(cfg.Contour.Field)
	if err != nil {
		return err
	}
	size := geom.Size{W: cfg.Export.Width, H: cfg.Export.Height}
	view := plane.NewView(size, geom.Pt(cfg.View.CenterX, cfg.View.CenterY), cfg.View.HalfWidth, plane.Options{
		ZoomFactor:    cfg.Zoom.Factor,
		ZoomLimitLow:  cfg.Zoom.LimitLow,
		ZoomLimitHigh: cfg.Zoom.LimitHigh,
	})
	fr, err := frame.Compose(view, f.Sampler, frame.Settings{
		Threshold:  cfg.Contour.ThresholdOr(f.Threshold),
		Resolution: cfg.Contour.Resolution,
		Layers: frame.Layers{
			Contour: cfg.Layers.ContourOn(),
			Axis:    cfg.Layers.AxisOn(),
			Dots:    cfg.Layers.DotsOn(),
			Grid:    cfg.Layers.GridOn(),
		},
		Extractor: contour.Extractor{
			SaddleTolerance: cfg.Contour.SaddleTolerance,
			MaxCells:        cfg.Contour.MaxCells,
		},
	})
	if err != nil {
		return err
	}
	data, err := raster.NewRenderer(raster.DefaultConfig()).Render(fr, view, size)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func runServer(cfg *config.Config, logger *slog.Logger) {
	log.Printf("Starting isoplane server on port %d", cfg.Server.Port)

	cacheManager, err := cache.NewManager(cache.Config{
		FrameCacheSizeMB: cfg.Server.FrameCacheMB,
		FrameTTL:         time.Duration(cfg.Server.FrameTTLMin) * time.Minute,
		QueryCacheSize:   cfg.Server.QueryCacheSize,
	})
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer cacheManager.Close()

	router := api.NewRouter(api.RouterConfig{
		Config:   cfg,
		Cache:    cacheManager,
		Renderer: raster.NewRenderer(raster.DefaultConfig()),
		Logger:   logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Server listening on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
