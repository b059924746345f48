package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "travelpartner"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultPort      = "8080"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultIdentityIssuer   = "travelpartner-identity"
	DefaultIdentityAudience = "travelpartner"

	DefaultPaymentAPIURL  = "https://api.razorpay.com"
	DefaultPaymentTimeout = 10 * time.Second

	DefaultCurrency     = "INR"
	DefaultFareClass    = "Economy"
	DefaultHoldTTL      = 10 * time.Minute
	DefaultSelectionTTL = 30 * time.Minute
	DefaultCriteriaTTL  = 12 * time.Hour

	DefaultKafkaEnabled          = false
	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultReconcileGroupID      = "reconcile"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	// MinorUnitsPerMajor converts ticket prices into the gateway's smallest currency unit.
	MinorUnitsPerMajor = 100
)
