package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	// Acuity signs webhook deliveries with the account API key.
	EnvAcuityAPIKey = "ACUITY_API_KEY"

	// Base64 AES-256 key used to seal customer session tokens.
	EnvSessionSealKey = "SESSION_SEAL_KEY"

	EnvCustomerServiceURL = "CUSTOMER_SERVICE_URL"

	EnvKafkaEnabled          = "KAFKA_ENABLED"
	EnvAppointmentsTopic     = "APPOINTMENTS_TOPIC"
	EnvAppointmentsDLQTopic  = "APPOINTMENTS_DLQ_TOPIC"

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
