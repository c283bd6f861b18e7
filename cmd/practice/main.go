// Alphabet Lab - practice session runner
//
// Drives an adaptive practice session against a remote policy service using
// the stub scorer, then reports the final mastery distribution.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashureev/alphabet-lab/internal/config"
	"github.com/ashureev/alphabet-lab/internal/domain"
	"github.com/ashureev/alphabet-lab/internal/policyclient"
	"github.com/ashureev/alphabet-lab/internal/scorer"
	"github.com/ashureev/alphabet-lab/internal/session"
	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	stub, err := scorer.NewStub(cfg.ScorerAccuracy, nil)
	if err != nil {
		slog.Error("Failed to create scorer", "error", err)
		os.Exit(1)
	}

	client := policyclient.New(cfg.PolicyURL, logger)
	ctrl := session.New(client, client, stub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting practice session",
		"policy_url", cfg.PolicyURL,
		"attempts", cfg.PracticeAttempts,
		"accuracy", cfg.ScorerAccuracy)

	if err := ctrl.Start(ctx); err != nil {
		// Non-fatal: the guardrail keeps the session progressing even
		// when the policy service is unreachable.
		slog.Warn("Initial recommendation failed", "error", err)
	}

	for i := 0; i < cfg.PracticeAttempts && ctx.Err() == nil; i++ {
		err := ctrl.RunAttempt(ctx)
		switch {
		case err == nil:
		case errors.Is(err, session.ErrScoringFailure):
			slog.Error("Attempt aborted by scorer", "error", err, "attempt", i+1)
		case errors.Is(err, session.ErrRecommendationUnavailable):
			slog.Warn("Recommendation unavailable", "error", err, "attempt", i+1)
		default:
			slog.Error("Attempt failed", "error", err, "attempt", i+1)
		}
	}

	report(ctrl)
}

func report(ctrl *session.Controller) {
	mastery := ctrl.Mastery()
	counts := make(map[domain.MasteryLevel]int, 3)
	for _, level := range mastery {
		counts[level]++
	}

	slog.Info("Practice session finished",
		"current_letter", ctrl.State().Letter,
		"mastered", counts[domain.MasteryMastered],
		"practicing", counts[domain.MasteryPracticing],
		"unseen", counts[domain.MasteryUnseen])
}
