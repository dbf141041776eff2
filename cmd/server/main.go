package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"doc-chat/handler"
	"doc-chat/internal/app"
	"doc-chat/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg.LogLevel))

	answerService, llm, err := app.NewAnswerService(ctx, cfg)
	if err != nil {
		slog.Error("failed to create answer service", "err", err)
		os.Exit(1)
	}
	if err := llm.Ready(ctx); err != nil {
		slog.Warn("OpenAI credential unavailable, chat requests will fail", "err", err)
	}

	h, err := handler.NewHandler(answerService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// The provider call alone may take OPENAI_TIMEOUT.
		WriteTimeout: cfg.OpenAI.Timeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.ServerAddr, "model", cfg.OpenAI.Model)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server stopped", "err", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "err", err)
		}
	}
}
