package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"doc-chat/handler"
	"doc-chat/internal/app"
	"doc-chat/internal/config"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg.LogLevel))

	// ---- Clients ----
	answerService, llm, err := app.NewAnswerService(ctx, cfg)
	if err != nil {
		slog.Error("failed to create answer service", "err", err)
		os.Exit(1)
	}
	if err := llm.Ready(ctx); err != nil {
		slog.Warn("OpenAI credential unavailable, chat requests will fail", "err", err)
	}

	// ---- Handler ----
	h, err := handler.NewHandler(answerService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
