package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"slotbook/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	StorageBackend string
	StorageDir     string

	RedisAddr      string
	RedisPassword  string
	RedisKeyPrefix string

	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	PostgresDSN string

	KafkaBrokers            []string
	KafkaNotificationsTopic string

	SlotCapacity         int
	NotificationFeedSize int

	RequestTimeout  time.Duration
	StorageTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	IdempotencyTTL time.Duration
	MaxRequestSize int

	Log *logger.Logger
}

// Load reads configuration from the environment (and an optional .env file),
// validates it and exits the process if it is unusable.
func Load(serviceName string) *Config {
	envFileErr := godotenv.Load()

	cfg := FromEnv()
	cfg.Log = logger.New(logger.Config{
		Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
		Format:    logger.JSON,
		AddSource: true,
		Service:   serviceName,
	})
	if envFileErr != nil {
		cfg.Log.Debug("No .env file loaded, using process environment", "error", envFileErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// FromEnv builds a Config from environment variables without validating it.
func FromEnv() *Config {
	return &Config{
		Port: getEnvStr(EnvPort, DefaultPort),

		StorageBackend: strings.ToLower(getEnvStr(EnvStorageBackend, DefaultStorageBackend)),
		StorageDir:     getEnvStr(EnvStorageDir, DefaultStorageDir),

		RedisAddr:      getEnvStr(EnvRedisAddr, DefaultRedisAddr),
		RedisPassword:  getEnvStr(EnvRedisPassword, ""),
		RedisKeyPrefix: getEnvStr(EnvRedisKeyPrefix, DefaultRedisKeyPrefix),

		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		PostgresDSN: getEnvStr(EnvPostgresDSN, DefaultPostgresDSN),

		KafkaBrokers:            getEnvList(EnvKafkaBrokers),
		KafkaNotificationsTopic: getEnvStr(EnvKafkaNotificationsTopic, DefaultKafkaNotificationsTopic),

		SlotCapacity:         getEnvNum(EnvSlotCapacity, DefaultSlotCapacity),
		NotificationFeedSize: getEnvNum(EnvNotificationFeedSize, DefaultNotificationFeedSize),

		RequestTimeout:  getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		StorageTimeout:  getEnvDuration(EnvStorageTimeout, DefaultStorageTimeout),
		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),
	}
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	switch cfg.StorageBackend {
	case BackendMemory:
	case BackendFile:
		if cfg.StorageDir == "" {
			errors = append(errors, "StorageDir cannot be empty for the file backend")
		}
	case BackendRedis:
		if cfg.RedisAddr == "" {
			errors = append(errors, "RedisAddr cannot be empty for the redis backend")
		}
	case BackendMongo:
		if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
			errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactURI(cfg.MongoURI)))
		}
		if cfg.MongoDatabaseName == "" {
			errors = append(errors, "MongoDatabaseName cannot be empty")
		}
		if cfg.MongoConnTimeout <= 0 {
			errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
		}
	case BackendPostgres:
		if !regexp.MustCompile(`^postgres(ql)?://`).MatchString(cfg.PostgresDSN) {
			errors = append(errors, fmt.Sprintf("PostgresDSN must start with 'postgres://' or 'postgresql://', got: %s", redactURI(cfg.PostgresDSN)))
		}
	default:
		errors = append(errors, fmt.Sprintf("StorageBackend must be one of [file, memory, redis, mongo, postgres], got: %s", cfg.StorageBackend))
	}

	for i, broker := range cfg.KafkaBrokers {
		if broker == "" {
			errors = append(errors, fmt.Sprintf("Kafka broker %d cannot be empty", i))
		}
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaNotificationsTopic == "" {
		errors = append(errors, "KafkaNotificationsTopic cannot be empty when brokers are configured")
	}

	if cfg.SlotCapacity < 1 || cfg.SlotCapacity > MaxSlotCapacity {
		errors = append(errors, fmt.Sprintf("SlotCapacity must be between 1 and %d, got: %d", MaxSlotCapacity, cfg.SlotCapacity))
	}
	if cfg.NotificationFeedSize <= 0 {
		errors = append(errors, fmt.Sprintf("NotificationFeedSize must be positive, got: %d", cfg.NotificationFeedSize))
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"RequestTimeout", cfg.RequestTimeout},
		{"StorageTimeout", cfg.StorageTimeout},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
	}
	for _, d := range durations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}

	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"port", cfg.Port,
		"storage_backend", cfg.StorageBackend,
		"storage_dir", cfg.StorageDir,
		"redis_addr", cfg.RedisAddr,
		"redis_password_set", cfg.RedisPassword != "",
		"redis_key_prefix", cfg.RedisKeyPrefix,
		"mongo_uri", redactURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"postgres_dsn", redactURI(cfg.PostgresDSN),
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_notifications_topic", cfg.KafkaNotificationsTopic,
		"slot_capacity", cfg.SlotCapacity,
		"notification_feed_size", cfg.NotificationFeedSize,
		"request_timeout", cfg.RequestTimeout,
		"storage_timeout", cfg.StorageTimeout,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
	)
}

var credentialRegex = regexp.MustCompile(`([a-z+]+://)[^:/@]+:[^@]+@`)

func redactURI(uri string) string {
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
