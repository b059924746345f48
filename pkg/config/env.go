package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"

	EnvIdentityJWTSecret = "IDENTITY_JWT_SECRET"
	EnvIdentityIssuer    = "IDENTITY_ISSUER"
	EnvIdentityAudience  = "IDENTITY_AUDIENCE"

	EnvPaymentAPIURL        = "PAYMENT_API_URL"
	EnvPaymentKeyID         = "PAYMENT_KEY_ID"
	EnvPaymentKeySecret     = "PAYMENT_KEY_SECRET"
	EnvPaymentWebhookSecret = "PAYMENT_WEBHOOK_SECRET"
	EnvPaymentTimeout       = "PAYMENT_TIMEOUT"

	EnvDefaultCurrency  = "DEFAULT_CURRENCY"
	EnvDefaultFareClass = "DEFAULT_FARE_CLASS"
	EnvHoldTTL          = "HOLD_TTL"
	EnvSelectionTTL     = "SELECTION_TTL"
	EnvCriteriaTTL      = "CRITERIA_TTL"
	EnvTicketSealKey    = "TICKET_SEAL_KEY"

	EnvKafkaEnabled          = "KAFKA_ENABLED"
	EnvBookingEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQTopic = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvReconcileGroupID      = "RECONCILE_GROUP_ID"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
