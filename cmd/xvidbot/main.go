package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"xvidbot/internal/artifact"
	"xvidbot/internal/bot"
	"xvidbot/internal/config"
	"xvidbot/internal/download"
	"xvidbot/internal/link"
	"xvidbot/internal/metrics"
	"xvidbot/internal/storage"
	"xvidbot/internal/thread"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	level, _ := cfg.Level()
	log.SetLevel(level)

	log.WithFields(logrus.Fields{
		"temp_dir":        cfg.TempDir,
		"gate_enabled":    cfg.GateEnabled(),
		"thread_expander": cfg.ThreadExpander,
		"persistent":      cfg.PreferencesPath != "",
	}).Info("Configuration loaded successfully")

	// Create context that listens for interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Initialize Components ---
	log.Info("Initializing components...")

	artifacts, err := artifact.NewStore(cfg.TempDir, log)
	if err != nil {
		log.Fatalf("Failed to prepare temp directory: %v", err)
	}

	repo, err := storage.NewBadgerRepository(cfg.PreferencesPath, log)
	if err != nil {
		log.Fatalf("Failed to initialize preference store: %v", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.WithError(err).Error("Error closing preference store")
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	if cfg.YtdlpInstall {
		if err := download.Install(ctx, log); err != nil {
			log.Fatalf("Failed to install yt-dlp: %v", err)
		}
	}
	downloader := download.NewYtdlpDownloader(artifacts, log,
		download.WithExecutable(cfg.YtdlpPath),
		download.WithRecorder(collector),
	)

	var expander thread.Expander = thread.Single{}
	if cfg.ThreadExpander == config.ExpanderBrowser {
		expander = thread.NewBrowser(log)
	}

	botHandler, err := bot.NewHandler(cfg, bot.Deps{
		Repo:       repo,
		Classifier: link.NewClassifier(cfg.AllowedDomains),
		Expander:   expander,
		Downloader: downloader,
		Artifacts:  artifacts,
		Recorder:   collector,
	}, log)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram bot handler: %v", err)
	}

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Handler(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.WithField("addr", cfg.MetricsAddr).Info("Serving metrics")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	// --- Application Startup ---
	log.Info("Starting xvidbot...")
	go botHandler.Start(ctx)

	// --- Wait for Shutdown Signal ---
	<-ctx.Done()

	// --- Graceful Shutdown ---
	log.Info("Shutting down xvidbot...")
	stop()

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Error stopping metrics server")
		}
	}

	log.Info("xvidbot shut down gracefully.")
}
