package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dialoguehub/internal/util"
	"dialoguehub/pkg/storage"
	"dialoguehub/services/dialogue/internal/app"
	"dialoguehub/services/dialogue/internal/bootstrap"
	"dialoguehub/services/dialogue/internal/config"
	"dialoguehub/services/dialogue/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)
	mode, _ := config.ParseMode(cfg.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A folder that cannot be reached keeps the process up; /api routes
	// report the error until the deployment is fixed.
	var startupErr error
	folder, err := bootstrap.OpenFolder(ctx, cfg, mode)
	if err != nil {
		logger.Error("folder unavailable", "backend", cfg.FolderBackend, "err", err)
		startupErr = err
		folder = storage.Unavailable{Err: err}
	}

	st, err := bootstrap.OpenStore(ctx, cfg, mode)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	limiter, err := bootstrap.OpenHighlightLimiter(cfg)
	if err != nil {
		log.Fatalf("failed to init rate limiter: %v", err)
	}
	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	appCore, err := app.New(app.Config{
		Mode:            mode,
		Folder:          folder,
		Store:           st,
		AudioExtensions: cfg.AudioExtensions,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer := server.New(server.Config{
		App:              appCore,
		StartupErr:       startupErr,
		HighlightLimiter: limiter,
		TrustedProxies:   trustedProxies,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpServer.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: audio streams can outlive any fixed deadline.
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "err", err)
		}
	}()

	slog.Info("dialogue server listening", "addr", addr, "mode", mode, "backend", cfg.FolderBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}

	if err := appCore.Close(); err != nil {
		logger.Error("close store", "err", err)
	}
	if err := limiter.Close(); err != nil {
		logger.Error("close rate limiter", "err", err)
	}
	slog.Info("dialogue server stopped")
}
