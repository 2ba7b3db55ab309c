package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/dayboard/internal/auth"
	"github.com/dukerupert/dayboard/internal/config"
	"github.com/dukerupert/dayboard/internal/database"
	"github.com/dukerupert/dayboard/internal/email"
	"github.com/dukerupert/dayboard/internal/logging"
	"github.com/dukerupert/dayboard/internal/server"
	"github.com/dukerupert/dayboard/internal/whatsapp"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		logging.Setup("info", "text").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(cfg.PostmarkToken, cfg.PostmarkFrom)
	if !emailClient.Configured() {
		logger.Warn("POSTMARK_SERVER_TOKEN not set, email digests disabled")
	}

	var waOpts []whatsapp.Option
	if cfg.WhatsAppBaseURL != "" {
		waOpts = append(waOpts, whatsapp.WithBaseURL(cfg.WhatsAppBaseURL))
	}
	waClient := whatsapp.NewClient(cfg.WhatsAppAPIKey, waOpts...)
	if !waClient.Configured() {
		logger.Warn("WHATSAPP_API_KEY not set, whatsapp digests disabled")
	}

	srv := server.New(db, server.Config{
		Tokens:         auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		Email:          emailClient,
		WhatsApp:       waClient,
		Location:       cfg.Location,
		AllowedOrigins: cfg.AllowedOrigins,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SchedulerEnabled {
		srv.Scheduler().Start(ctx)
		logger.Info("digest scheduler started", "timezone", cfg.Location.String())
	}

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("dayboard listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	srv.Scheduler().Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
