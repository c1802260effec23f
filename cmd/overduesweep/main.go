package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/GlebRadaev/loanportal/internal/app"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
)

// Sends one overdue notice per approved loan past its due date and exits.
// Meant to be run from cron.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := app.Sweep(ctx)
	if err != nil {
		log.Error().Err(err).Int("notified", res.Notified).Int("failed", res.Failed).Msg("Overdue sweep failed")
		zap.L().Fatal("Overdue sweep failed: ", zap.Error(err))
	}

	log.Info().Int("overdue", res.Overdue).Int("notified", res.Notified).Int("failed", res.Failed).
		Msg("Overdue sweep finished")
}
