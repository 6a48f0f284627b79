package kafka_config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"
)

var codecs = map[string]compress.Compression{
	"none":   compress.None,
	"gzip":   compress.Gzip,
	"snappy": compress.Snappy,
	"lz4":    compress.Lz4,
	"zstd":   compress.Zstd,
}

var acks = map[int]kafka.RequiredAcks{
	-1: kafka.RequireAll,
	0:  kafka.RequireNone,
	1:  kafka.RequireOne,
}

// Config describes where notification events are published and how the
// writer batches and acknowledges them.
type Config struct {
	Brokers  []string
	Topic    string
	ClientID string
	Producer ProducerConfig
}

type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	WriteTimeout time.Duration
	RequireAcks  int
	Compression  string
	Async        bool
}

// Codec returns the kafka-go codec for the configured compression name.
func (p ProducerConfig) Codec() compress.Compression {
	return codecs[p.Compression]
}

func (p ProducerConfig) Acks() kafka.RequiredAcks {
	return acks[p.RequireAcks]
}

// Load reads producer tuning from the environment. Values that fail to parse
// are reported together with the other validation failures.
func Load(brokers []string, topic string) (*Config, error) {
	env := envReader{}
	cfg := &Config{
		Brokers:  brokers,
		Topic:    topic,
		ClientID: env.getStr(EnvKafkaClientID, DefaultClientID),
		Producer: ProducerConfig{
			MaxAttempts:  env.getInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
			BatchTimeout: env.getDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
			WriteTimeout: env.getDuration(EnvKafkaProducerWriteTimeout, DefaultProducerWriteTimeout),
			RequireAcks:  env.getInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
			Compression:  strings.ToLower(env.getStr(EnvKafkaProducerCompression, DefaultProducerCompression)),
			Async:        env.getBool(EnvKafkaProducerAsync, DefaultProducerAsync),
		},
	}

	if err := cfg.validate(env.problems); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	return cfg.validate(nil)
}

func (cfg *Config) validate(problems []string) error {
	if len(cfg.Brokers) == 0 {
		problems = append(problems, "At least one Kafka broker is required")
	}
	for i, broker := range cfg.Brokers {
		if strings.TrimSpace(broker) == "" {
			problems = append(problems, fmt.Sprintf("Broker %d cannot be empty", i))
		}
	}
	if cfg.Topic == "" {
		problems = append(problems, "Notifications topic cannot be empty")
	}

	p := cfg.Producer
	if p.MaxAttempts <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerMaxAttempts must be positive, got: %d", p.MaxAttempts))
	}
	if p.BatchTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerBatchTimeout must be positive, got: %s", p.BatchTimeout))
	}
	if p.WriteTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("ProducerWriteTimeout must be positive, got: %s", p.WriteTimeout))
	}
	if _, ok := codecs[p.Compression]; !ok {
		problems = append(problems, fmt.Sprintf("ProducerCompression must be one of [none, gzip, snappy, lz4, zstd], got: %s", p.Compression))
	}
	if _, ok := acks[p.RequireAcks]; !ok {
		problems = append(problems, fmt.Sprintf("ProducerRequireAcks must be -1, 0, or 1, got: %d", p.RequireAcks))
	}

	if len(problems) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Kafka configuration validation failed:\n")
	for i, problem := range problems {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, problem)
	}
	return fmt.Errorf("%s", b.String())
}

func (cfg *Config) LogConfiguration(logFunc func(msg string, keysAndValues ...any)) {
	if logFunc == nil {
		return
	}

	logFunc("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"client_id", cfg.ClientID,
		"producer_max_attempts", cfg.Producer.MaxAttempts,
		"producer_batch_timeout", cfg.Producer.BatchTimeout,
		"producer_write_timeout", cfg.Producer.WriteTimeout,
		"producer_require_acks", cfg.Producer.RequireAcks,
		"producer_compression", cfg.Producer.Compression,
		"producer_async", cfg.Producer.Async,
	)
}

// envReader collects parse failures instead of silently falling back.
type envReader struct {
	problems []string
}

func (e *envReader) getStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func (e *envReader) getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		e.problems = append(e.problems, fmt.Sprintf("%s must be an integer, got: %s", key, value))
		return fallback
	}
	return n
}

func (e *envReader) getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		e.problems = append(e.problems, fmt.Sprintf("%s must be a boolean, got: %s", key, value))
		return fallback
	}
	return b
}

func (e *envReader) getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		e.problems = append(e.problems, fmt.Sprintf("%s must be a duration, got: %s", key, value))
		return fallback
	}
	return d
}
