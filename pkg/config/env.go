package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvDotEnv   = "DOTENV_PATH"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"
	EnvRateLimitBurst    = "RATE_LIMIT_BURST"

	EnvRequestTimeout     = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL     = "IDEMPOTENCY_TTL"
	EnvIdempotencyBackend = "IDEMPOTENCY_BACKEND"
	EnvMaxRequestSize     = "MAX_REQUEST_SIZE"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvJWTSecret     = "JWT_SECRET"
	EnvAdminTokenTTL = "ADMIN_TOKEN_TTL"

	EnvQuoteTokenKey = "QUOTE_TOKEN_KEY"
	EnvQuoteTokenTTL = "QUOTE_TOKEN_TTL"

	EnvPaymentWebhookSecret = "PAYMENT_WEBHOOK_SECRET"
	EnvStripeSecretKey      = "STRIPE_SECRET_KEY"

	EnvEnforceAvailability = "ENFORCE_AVAILABILITY"
	EnvCurrency            = "CURRENCY"
	EnvBookingLockTTL      = "BOOKING_LOCK_TTL"

	EnvBookingEventsTopic   = "KAFKA_BOOKING_EVENTS_TOPIC"
	EnvPaymentOutcomesTopic = "KAFKA_PAYMENT_OUTCOMES_TOPIC"
	EnvPaymentDLQTopic      = "KAFKA_PAYMENT_DLQ_TOPIC"
	EnvPaymentConsumerGroup = "KAFKA_PAYMENT_CONSUMER_GROUP"
)
