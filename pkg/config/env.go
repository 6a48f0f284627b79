package config

const (
	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvStorageBackend = "STORAGE_BACKEND"
	EnvStorageDir     = "STORAGE_DIR"

	EnvRedisAddr      = "REDIS_ADDR"
	EnvRedisPassword  = "REDIS_PASSWORD"
	EnvRedisKeyPrefix = "REDIS_KEY_PREFIX"

	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPostgresDSN = "POSTGRES_DSN"

	EnvKafkaBrokers            = "KAFKA_BROKERS"
	EnvKafkaNotificationsTopic = "KAFKA_NOTIFICATIONS_TOPIC"

	EnvSlotCapacity         = "SLOT_CAPACITY"
	EnvNotificationFeedSize = "NOTIFICATION_FEED_SIZE"

	EnvRequestTimeout  = "REQUEST_TIMEOUT"
	EnvStorageTimeout  = "STORAGE_TIMEOUT"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"
)
