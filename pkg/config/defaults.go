package config

import "time"

const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultStorageBackend = BackendFile
	DefaultStorageDir     = "./data"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "slotbook:"

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "slotbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPostgresDSN = "postgres://localhost:5432/slotbook?sslmode=disable"

	DefaultKafkaNotificationsTopic = "slotbook.notifications"

	DefaultSlotCapacity         = 5
	MaxSlotCapacity             = 200
	DefaultNotificationFeedSize = 50

	DefaultRequestTimeout  = 10 * time.Second
	DefaultStorageTimeout  = 5 * time.Second
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 64 * 1024 // 64KB
)
