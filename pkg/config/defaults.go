package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "innkeep"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultRateLimitBurst    = 10

	DefaultRequestTimeout     = 30 * time.Second
	DefaultIdempotencyTTL     = 24 * time.Hour
	DefaultIdempotencyBackend = IdempotencyBackendMemory
	DefaultMaxRequestSize     = 1 * 1024 * 1024 // 1MB

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultAdminTokenTTL = 12 * time.Hour
	DefaultQuoteTokenTTL = 30 * time.Minute

	DefaultEnforceAvailability = true
	DefaultCurrency            = "KES"
	DefaultBookingLockTTL      = 30 * time.Second

	DefaultBookingEventsTopic   = "booking-events"
	DefaultPaymentOutcomesTopic = "payment-outcomes"
	DefaultPaymentDLQTopic      = "payment-outcomes-dlq"
	DefaultPaymentConsumerGroup = "innkeep-payments"

	DefaultPaginationLimit = 100
	MinPaginationLimit     = 10

	DefaultRecentBookingsLimit = 5
)

const (
	IdempotencyBackendMemory = "memory"
	IdempotencyBackendRedis  = "redis"
)
