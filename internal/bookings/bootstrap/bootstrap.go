// Package bootstrap builds the booking service and its collaborators for the
// processes that run it: the API, the payments consumer and the batch jobs.
package bootstrap

import (
	"crypto/rand"
	"fmt"

	"innkeep/internal/bookings/events"
	"innkeep/internal/bookings/repository"
	"innkeep/internal/bookings/service"
	"innkeep/internal/bookings/validator"
	directoryrepo "innkeep/internal/directory/repository"
	directoryservice "innkeep/internal/directory/service"
	directoryvalidator "innkeep/internal/directory/validator"
	"innkeep/internal/payments/verifier"
	"innkeep/pkg/config"
	"innkeep/pkg/kafka"
	kafka_config "innkeep/pkg/kafka/config"
	kafka_middleware "innkeep/pkg/kafka/middleware"
	"innkeep/pkg/sealer"
)

// Deps are the collaborators that differ between processes. A nil Tokens
// gets a throwaway key, which is fine for processes that never open quote
// tokens. A nil Verifier trusts reported outcomes.
type Deps struct {
	Tokens    *sealer.Sealer
	Verifier  verifier.Verifier
	Publisher events.Publisher
}

// NewBookingService wires the Mongo-backed booking service. cfg must already
// hold a connected Mongo client.
func NewBookingService(cfg *config.Config, deps Deps) (service.BookingService, error) {
	if deps.Publisher == nil {
		return nil, fmt.Errorf("booking service requires an event publisher")
	}

	tokens := deps.Tokens
	if tokens == nil {
		var err error
		if tokens, err = randomSealer(); err != nil {
			return nil, err
		}
	}

	v := deps.Verifier
	if v == nil {
		v = verifier.NoopVerifier{}
	}

	directory := directoryservice.NewDirectoryService(
		directoryrepo.NewMongoRoomRepository(cfg),
		directoryrepo.NewMongoPackageRepository(cfg),
		directoryvalidator.NewDirectoryValidator(cfg.Log),
		cfg,
	)

	return service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		repository.NewBookingLockRepository(cfg),
		directory,
		validator.NewBookingValidator(cfg.Log),
		tokens,
		v,
		deps.Publisher,
		cfg,
	), nil
}

// NewSealer uses the configured quote token key, or a random one when none
// is set. Random keys do not survive a restart.
func NewSealer(cfg *config.Config) (*sealer.Sealer, error) {
	if cfg.QuoteTokenKey != "" {
		s, err := sealer.NewFromHex(cfg.QuoteTokenKey)
		if err != nil {
			return nil, fmt.Errorf("invalid quote token key: %w", err)
		}
		return s, nil
	}

	cfg.Log.Warn("QUOTE_TOKEN_KEY not set, quote tokens will not survive a restart")
	return randomSealer()
}

func randomSealer() (*sealer.Sealer, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate quote token key: %w", err)
	}
	return sealer.New(key)
}

func NewVerifier(cfg *config.Config) verifier.Verifier {
	if cfg.StripeSecretKey == "" {
		cfg.Log.Info("STRIPE_SECRET_KEY not set, payment outcomes are trusted as reported")
		return verifier.NoopVerifier{}
	}
	return verifier.NewStripeVerifier(cfg.StripeSecretKey, cfg.Log)
}

// NewPublisher returns a Kafka publisher on the booking events topic, or a
// no-op publisher when Kafka is disabled.
func NewPublisher(cfg *config.Config, kafkaCfg *kafka_config.Config) (events.Publisher, error) {
	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NewNoopPublisher(cfg.Log), nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, "", cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))

	cfg.Log.Info("Publishing booking events", "topic", cfg.BookingEventsTopic, "brokers", kafkaCfg.Brokers)
	return events.NewKafkaPublisher(producer, cfg.Log), nil
}
