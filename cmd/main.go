// Package main provides the entry point for the Facebook video downloader service.
// @title Facebook Video Downloader API
// @version 1.0
// @description Extracts Facebook video metadata with live progress and streams single-file downloads through yt-dlp.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"

	_ "github.com/waseem196/down-fb/docs" // Import for swagger docs
	"github.com/waseem196/down-fb/internal/api/handlers"
	"github.com/waseem196/down-fb/internal/api/router"
	"github.com/waseem196/down-fb/internal/config"
	"github.com/waseem196/down-fb/internal/metrics"
	"github.com/waseem196/down-fb/internal/services/materializer"
	"github.com/waseem196/down-fb/internal/services/progress"
	"github.com/waseem196/down-fb/internal/services/ratelimit"
	"github.com/waseem196/down-fb/internal/services/validator"
	"github.com/waseem196/down-fb/internal/services/ytdlp"
	"github.com/waseem196/down-fb/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting Facebook video downloader service")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	scratchFs := afero.NewOsFs()
	if err := scratchFs.MkdirAll(cfg.Download.ScratchRoot, 0o755); err != nil {
		logger.Fatalf("Failed to prepare scratch root %s: %v", cfg.Download.ScratchRoot, err)
	}

	invoker := ytdlp.NewExecInvoker(cfg.YTDLP.BinaryPath, appMetrics)

	// Probe the tool once so a missing binary shows up in the startup logs
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), cfg.YTDLP.VersionTimeout)
	if version, err := ytdlp.Version(probeCtx, invoker, cfg.YTDLP.VersionTimeout); err != nil {
		logger.Warnf("yt-dlp is not available, service will run degraded: %v", err)
	} else {
		logger.Infof("Using yt-dlp %s", version)
	}
	cancelProbe()

	extractor := ytdlp.NewExtractor(invoker, ytdlp.ExtractorConfig{
		Timeout:       cfg.YTDLP.ExtractTimeout,
		SocketTimeout: cfg.YTDLP.ExtractSocketTimeout,
		CookiesPath:   cfg.YTDLP.CookiesPath,
	}, appMetrics)

	videoMaterializer := materializer.New(invoker, scratchFs, materializer.Config{
		ScratchRoot:   cfg.Download.ScratchRoot,
		SocketTimeout: cfg.YTDLP.DownloadSocketTimeout,
		CookiesPath:   cfg.YTDLP.CookiesPath,
		FFmpegPath:    cfg.YTDLP.FFmpegPath,
		MaxConcurrent: cfg.Download.MaxConcurrent,
	}, appMetrics)

	limiter := ratelimit.NewLimiter(cfg.API.RateLimitRequests, cfg.API.RateLimitWindow, cfg.API.RateLimitSweepInterval)
	urlValidator := validator.NewURLValidator(cfg.Validator.AllowedDomains, cfg.Validator.ShortLinkHosts)

	// Initialize handlers
	fetchHandler := handlers.NewFetchHandler(urlValidator, progress.NewEmitter(extractor))
	downloadHandler := handlers.NewDownloadHandler(urlValidator, videoMaterializer, cfg.Download.FilenameMaxLength)
	healthHandler := handlers.NewHealthHandler(invoker, cfg.YTDLP.VersionTimeout, scratchFs, cfg.Download.ScratchRoot)

	// Initialize router
	r := router.NewRouter(cfg, router.Handlers{
		Fetch:    fetchHandler,
		Download: downloadHandler,
		Health:   healthHandler,
	}, router.Options{
		Limiter:  limiter,
		Metrics:  appMetrics,
		Gatherer: registry,
	})

	// Remove workspaces left behind by a previous crash
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	var sweeper sync.WaitGroup
	sweeper.Add(1)
	go func() {
		defer sweeper.Done()
		sweepOrphans(sweepCtx, videoMaterializer, cfg.Download.OrphanMaxAge, cfg.Download.OrphanSweepPeriod)
	}()

	// Start server
	go func() {
		logger.Infof("Starting server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := r.Start(); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := r.Shutdown(ctx); err != nil {
		logger.Errorf("Failed to shut down server gracefully: %v", err)
	}

	// Shutdown has drained the handlers, so every download body is closed by now
	videoMaterializer.Wait()

	stopSweeper()
	sweeper.Wait()
	limiter.Stop()

	logger.Info("Server shutdown complete")
}

func sweepOrphans(ctx context.Context, m *materializer.Materializer, maxAge, period time.Duration) {
	if period <= 0 {
		return
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		removed, err := m.CleanupOrphans(maxAge)
		if err != nil {
			utils.LogWarn(ctx, "Orphan workspace sweep failed", utils.Fields{"error": err.Error()})
		} else if removed > 0 {
			utils.LogInfo(ctx, "Removed orphan workspaces", utils.Fields{"count": removed})
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
