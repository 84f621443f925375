package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"innkeep/internal/bookings/bootstrap"
	"innkeep/pkg/auth"
	"innkeep/pkg/config"
	kafka_config "innkeep/pkg/kafka/config"
	"innkeep/pkg/logger"
)

const JobName = "stay-completion"

const jobTimeout = 10 * time.Minute

type stayCompleter interface {
	CompleteDueStays(ctx context.Context, now time.Time) (int, error)
}

func main() {
	cfg := config.Load(JobName)
	cfg.SetMongo()

	exitCode := 0
	if err := setupAndRun(cfg); err != nil {
		cfg.Log.Error("Stay completion failed", "error", err)
		exitCode = 1
	}

	cfg.GracefulShutdown()
	os.Exit(exitCode)
}

func setupAndRun(cfg *config.Config) error {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		return fmt.Errorf("invalid Kafka configuration: %w", err)
	}
	publisher, err := bootstrap.NewPublisher(cfg, kafkaCfg)
	if err != nil {
		return err
	}

	svc, err := bootstrap.NewBookingService(cfg, bootstrap.Deps{Publisher: publisher})
	if err != nil {
		_ = publisher.Close()
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	ctx = auth.WithPrincipal(ctx, auth.System(JobName))

	return run(ctx, svc, publisher, time.Now(), cfg.Log)
}

// run completes due stays and always closes the publisher, whether or not
// completion succeeded.
func run(ctx context.Context, svc stayCompleter, publisher io.Closer, now time.Time, log *logger.Logger) error {
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Failed to close event publisher", "error", err)
		}
	}()

	log.Info("Completing due stays")
	completed, err := svc.CompleteDueStays(ctx, now)
	if err != nil {
		return fmt.Errorf("completed %d stays before failing: %w", completed, err)
	}

	log.Info("Stay completion finished", "completed", completed)
	return nil
}
