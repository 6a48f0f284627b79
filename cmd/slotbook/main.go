package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"slotbook/internal/availability"
	bookingshandler "slotbook/internal/bookings/handler"
	bookingsrepo "slotbook/internal/bookings/repository"
	bookingsservice "slotbook/internal/bookings/service"
	"slotbook/internal/metrics"
	"slotbook/internal/notify"
	profileshandler "slotbook/internal/profiles/handler"
	profilesrepo "slotbook/internal/profiles/repository"
	profilesservice "slotbook/internal/profiles/service"
	"slotbook/internal/profiles/validator"
	"slotbook/internal/slots"
	"slotbook/internal/workflow"
	"slotbook/pkg/app"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	"slotbook/pkg/kafka"
	kafka_config "slotbook/pkg/kafka/config"
	kafkamiddleware "slotbook/pkg/kafka/middleware"
	"slotbook/pkg/storage"
	"slotbook/pkg/storage/mongostore"
	"slotbook/pkg/storage/pgstore"
	"slotbook/pkg/storage/redisstore"
)

const ServiceName = "slotbook"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting slotbook service")

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to open storage", "backend", cfg.StorageBackend, "error", err)
	}
	cfg.Log.Info("Storage ready", "backend", cfg.StorageBackend)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	catalog, err := slots.WithCapacity(cfg.SlotCapacity)
	if err != nil {
		cfg.Log.Fatal("Invalid slot catalog", "capacity", cfg.SlotCapacity, "error", err)
	}

	feed := notify.NewFeed(cfg.NotificationFeedSize)
	notifiers := notify.Multi{notify.NewLogNotifier(cfg.Log), feed}
	producer := initProducer(cfg)
	if producer != nil {
		notifiers = append(notifiers, notify.NewKafkaNotifier(producer, ServiceName, cfg.Log))
	}
	notifier := notify.Counting{Next: notifiers, Metrics: bookingMetrics}

	ledger, profiles := initServices(ctx, cfg, store, catalog, bookingMetrics)
	engine := availability.NewEngine(catalog, ledger)
	clk := clock.Real{}

	wf := workflow.New(workflow.Deps{
		Catalog:      catalog,
		Ledger:       ledger,
		Availability: engine,
		Profiles:     profiles,
		Notifier:     notifier,
		Clock:        clk,
		Log:          cfg.Log,
		Metrics:      bookingMetrics,
	})

	serverApp := app.NewApplication(cfg)
	serverApp.ObserveRequests(bookingMetrics.ObserveRequest)
	serverApp.SetApp(
		bookingshandler.NewHealthHandler(store, cfg.StorageBackend, cfg.Log),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		bookingshandler.NewBookingHandler(ledger, engine, wf, feed, clk, cfg.Log),
		profileshandler.NewProfileHandler(profiles, cfg.Log),
	)
	if producer != nil {
		serverApp.OnShutdown(app.ShutdownHook{Name: "kafka producer", Fn: func(context.Context) error {
			return producer.Close()
		}})
	}
	serverApp.OnShutdown(app.ShutdownHook{Name: "storage", Fn: func(context.Context) error {
		return store.Close()
	}})
	serverApp.Run()
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendFile:
		return storage.NewFileStore(cfg.StorageDir)
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil
	case config.BackendRedis:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.StorageTimeout)
		defer cancel()
		return redisstore.Connect(connectCtx, redisstore.Options{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
	case config.BackendMongo:
		return mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabaseName, cfg.MongoConnTimeout, cfg.StorageTimeout)
	case config.BackendPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.StorageTimeout)
		defer cancel()
		return pgstore.Connect(connectCtx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// initProducer returns nil when no brokers are configured.
func initProducer(cfg *config.Config) *kafka.Producer {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, notifications stay local")
		return nil
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers, cfg.KafkaNotificationsTopic)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	return producer
}

func initServices(
	ctx context.Context,
	cfg *config.Config,
	store storage.Store,
	catalog *slots.Catalog,
	m *metrics.BookingMetrics,
) (bookingsservice.LedgerService, profilesservice.ProfileService) {
	ledgerRepo := bookingsrepo.NewLedgerRepository(store, catalog, cfg.Log, m)
	ledger, err := bookingsservice.NewLedgerService(ctx, ledgerRepo, catalog, cfg.Log, m)
	if err != nil {
		cfg.Log.Fatal("Failed to load booking ledger", "error", err)
	}

	profileRepo := profilesrepo.NewProfileRepository(store, cfg.Log, m)
	profiles, err := profilesservice.NewProfileService(ctx, profileRepo, validator.NewProfileValidator(cfg.Log), cfg.Log, m)
	if err != nil {
		cfg.Log.Fatal("Failed to load contact profile", "error", err)
	}

	cfg.Log.Info("Booking services initialized",
		"slots", catalog.Count(),
		"capacity", catalog.Capacity(),
		"booked_dates", len(ledger.Dates()),
	)
	return ledger, profiles
}
