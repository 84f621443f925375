package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"innkeep/internal/bookings/bootstrap"
	"innkeep/internal/payments/consumer"
	paymentservice "innkeep/internal/payments/service"
	"innkeep/pkg/config"
	"innkeep/pkg/kafka"
	kafka_config "innkeep/pkg/kafka/config"
	kafka_middleware "innkeep/pkg/kafka/middleware"
)

const ServiceName = "payments-consumer"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	if !kafkaCfg.Enabled {
		cfg.Log.Fatal("Kafka must be enabled to consume payment outcomes")
	}

	publisher, err := bootstrap.NewPublisher(cfg, kafkaCfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}
	defer publisher.Close()

	// quote tokens are never opened here, so the sealer key is throwaway
	bookings, err := bootstrap.NewBookingService(cfg, bootstrap.Deps{
		Verifier:  bootstrap.NewVerifier(cfg),
		Publisher: publisher,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to initialize booking service", "error", err)
	}

	outcomes, err := paymentservice.NewOutcomeService(bookings, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize payment outcome service", "error", err)
	}

	c, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.PaymentOutcomesTopic,
		cfg.PaymentConsumerGroup,
		cfg.PaymentDLQTopic,
		consumer.NewOutcomeHandler(outcomes, cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	defer c.Close()

	metrics := kafka_middleware.NewMetrics()
	c.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	c.Use(metrics.ConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Consuming payment outcomes",
		"topic", cfg.PaymentOutcomesTopic,
		"group", cfg.PaymentConsumerGroup,
		"dlq", cfg.PaymentDLQTopic,
	)
	if err := c.Start(ctx); err != nil && ctx.Err() == nil {
		cfg.Log.Error("Payment outcome consumer stopped", "error", err)
	}

	cfg.Log.Info("Payment outcome consumer finished", metrics.Snapshot().LogValues()...)
}
