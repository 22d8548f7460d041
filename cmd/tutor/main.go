// Language tutor console.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashureev/lingo-tutor/internal/config"
	"github.com/ashureev/lingo-tutor/internal/console"
	"github.com/ashureev/lingo-tutor/internal/llm"
	"github.com/ashureev/lingo-tutor/internal/store"
	"github.com/ashureev/lingo-tutor/internal/tutor"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	if _, err := config.LoadEnvFiles(config.DefaultEnvFiles...); err != nil {
		return err
	}
	if os.Getenv("LOG_LEVEL") == "" {
		// Keep the dialogue readable unless asked otherwise.
		_ = os.Setenv("LOG_LEVEL", "warn")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return converse(ctx, cfg, logger, os.Stdin, os.Stdout, os.Stderr)
}

// converse opens the mistake log and runs one console session. A database
// that cannot be opened only disables mistake tracking.
func converse(ctx context.Context, cfg *config.Config, logger *slog.Logger, in io.Reader, out, errOut io.Writer) error {
	var mistakes store.MistakeLog
	repo, err := store.NewSQLite(ctx, cfg.DBPath)
	if err != nil {
		fmt.Fprintf(errOut, "Database error: %v (mistakes will not be recorded)\n", err)
	} else {
		defer func() {
			if closeErr := repo.Close(); closeErr != nil {
				logger.Error("Failed to close repository", "error", closeErr)
			}
		}()
		mistakes = repo
	}

	client := llm.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout)
	svc := tutor.NewService(client, mistakes, logger)

	err = console.New(svc, in, out).Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil
	}
	return err
}
