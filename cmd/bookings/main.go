package main

import (
	"innkeep/internal/bookings/bootstrap"
	"innkeep/internal/bookings/events"
	"innkeep/internal/bookings/handler"
	"innkeep/internal/bookings/service"
	dashboardhandler "innkeep/internal/dashboard/handler"
	dashboardrepo "innkeep/internal/dashboard/repository"
	dashboardservice "innkeep/internal/dashboard/service"
	paymenthandler "innkeep/internal/payments/handler"
	paymentservice "innkeep/internal/payments/service"
	"innkeep/pkg/app"
	"innkeep/pkg/config"
	"innkeep/pkg/contracts"
	kafka_config "innkeep/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	publisher := newPublisher(cfg)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})

	bookingService := initBookingService(cfg, publisher)
	handlers := []contracts.Handler{
		handler.NewBookingHandler(bookingService, cfg.Log),
		dashboardhandler.NewDashboardHandler(
			dashboardservice.NewDashboardService(dashboardrepo.NewMongoStatsRepository(cfg), cfg),
			cfg.Log,
		),
	}

	if cfg.PaymentWebhookSecret != "" {
		outcomes, err := paymentservice.NewOutcomeService(bookingService, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize payment outcome service", "error", err)
		}
		handlers = append(handlers, paymenthandler.NewWebhookHandler(outcomes, cfg.Log))
		serverApp.SignPath(paymenthandler.WebhookPath)
	} else {
		cfg.Log.Warn("PAYMENT_WEBHOOK_SECRET not set, payment webhook disabled")
	}

	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initBookingService(cfg *config.Config, publisher events.Publisher) service.BookingService {
	tokens, err := bootstrap.NewSealer(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize quote token sealer", "error", err)
	}

	bookingService, err := bootstrap.NewBookingService(cfg, bootstrap.Deps{
		Tokens:    tokens,
		Verifier:  bootstrap.NewVerifier(cfg),
		Publisher: publisher,
	})
	if err != nil {
		cfg.Log.Fatal("Failed to initialize booking service", "error", err)
	}

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

func newPublisher(cfg *config.Config) events.Publisher {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	publisher, err := bootstrap.NewPublisher(cfg, kafkaCfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}
	return publisher
}
