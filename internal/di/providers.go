package di

import (
	"context"
	"fmt"
	"time"

	"SignalScan/internal/domain/repository"
	"SignalScan/internal/handler/api"
	internalrepo "SignalScan/internal/repository"
	"SignalScan/internal/service/exchange"
	"SignalScan/internal/service/hub"
	"SignalScan/internal/service/ratelimit"
	"SignalScan/internal/service/snapshot"
	"SignalScan/internal/services/detectors"
	"SignalScan/internal/services/indicators"
	"SignalScan/internal/usecase"
	"SignalScan/pkg/cache"
	pkgch "SignalScan/pkg/clickhouse"
	"SignalScan/pkg/config"
	xhttp "SignalScan/pkg/http"
	pkgkafka "SignalScan/pkg/kafka"
	applogger "SignalScan/pkg/logger"
	"SignalScan/pkg/metrics"
	"SignalScan/pkg/server"
	"SignalScan/pkg/sqlite"
)

const initTimeout = 10 * time.Second

// ProvideLogger creates the root logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSQLiteClient opens the primary store file. The cleanup closes it.
func ProvideSQLiteClient(cfg *config.Config, l *applogger.Logger) (*sqlite.Client, func(), error) {
	client, err := sqlite.NewClient(sqlite.WithPath(cfg.Store.Path))
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite client: %w", err)
	}
	return client, closeWith(l, "sqlite", client.Close), nil
}

func closeWith(l *applogger.Logger, name string, fn func() error) func() {
	return func() {
		if err := fn(); err != nil {
			l.Warn("close error", applogger.String("resource", name), applogger.Error(err))
		}
	}
}

// ProvideSignalStore creates the store and its schema.
func ProvideSignalStore(client *sqlite.Client) (repository.SignalStore, error) {
	store := internalrepo.NewSQLiteSignalStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return store, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// archive is disabled.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, closeWith(l, "clickhouse", client.Close), nil
}

// ProvideArchive creates the ClickHouse archive tables. A nil client gives
// a nil archive.
func ProvideArchive(client *pkgch.Client, l *applogger.Logger) (repository.Archive, error) {
	if client == nil {
		return nil, nil
	}
	archive := internalrepo.NewClickHouseArchive(client, l)

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := archive.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return archive, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is
// disabled. Error logs are forwarded to the log topic through it; the
// cleanup detaches the collector before closing the producer.
func ProvideKafkaProducer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	if cfg.Log.Topic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval: 30 * time.Second,
			Topic:        cfg.Log.Topic,
			Publisher:    producer,
		})
	}
	closeProducer := closeWith(l, "kafka-producer", producer.Close)
	return producer, func() {
		l.RemoveCollector()
		closeProducer()
	}, nil
}

// ProvideKafkaConsumer creates the archive consumer. It only exists when
// both Kafka and the archive are enabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger, archive repository.Archive) (*pkgkafka.Consumer, func(), error) {
	if !cfg.Kafka.Enabled || archive == nil {
		return nil, func() {}, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka consumer: %w", err)
	}
	// Stop is idempotent; after a normal shutdown this is a no-op.
	return consumer, closeWith(l, "kafka-consumer", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return consumer.Stop(ctx)
	}), nil
}

// ProvideArchiveHandlers maps each event topic onto the archive.
func ProvideArchiveHandlers(cfg *config.Config, archive repository.Archive, m repository.Metrics) []pkgkafka.MessageHandler {
	if archive == nil {
		return nil
	}
	t := cfg.Kafka.Topics
	return []pkgkafka.MessageHandler{
		usecase.NewKafkaArchiveHandler(t.Signals, usecase.ArchiveSignals, archive, m),
		usecase.NewKafkaArchiveHandler(t.Alerts, usecase.ArchiveAlerts, archive, m),
		usecase.NewKafkaArchiveHandler(t.Validations, usecase.ArchiveObservations, archive, m),
	}
}

// ProvideCache returns Redis when enabled, otherwise a process-local cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		c := cache.NewMemoryCache()
		return c, closeWith(l, "cache", c.Close), nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, closeWith(l, "cache", c.Close), nil
}

func ProvideLocker(c cache.Service) repository.Locker {
	return internalrepo.NewCacheLocker(c)
}

// ProvideExchangeClient creates the Bybit market data client.
func ProvideExchangeClient(cfg *config.Config) *exchange.Client {
	return exchange.NewClient(exchange.Config{
		BaseURL:           cfg.Exchange.BaseURL,
		Category:          cfg.Exchange.Category,
		QuoteCoin:         cfg.Exchange.QuoteCoin,
		RequestsPerSecond: cfg.Exchange.RequestsPerSecond,
		Burst:             cfg.Exchange.Burst,
		Timeout:           cfg.Exchange.Timeout,
	})
}

func ProvideMarketData(c *exchange.Client) repository.MarketData {
	return c
}

// ProvideSignalEngine builds the detector set and indicator parameters.
func ProvideSignalEngine(cfg *config.Config) *usecase.SignalEngine {
	ind := indicators.DefaultParams()
	if cfg.Detectors.UTSensitivity > 0 {
		ind.UTSensitivity = cfg.Detectors.UTSensitivity
	}
	if cfg.Detectors.UTATRPeriod > 0 {
		ind.UTATRPeriod = cfg.Detectors.UTATRPeriod
	}
	set := detectors.NewSet(detectors.ParamsFromConfig(cfg.Detectors))
	return usecase.NewSignalEngine(set, ind, cfg.Scanner.TopN)
}

func ProvideSnapshotHolder() *snapshot.Holder {
	return snapshot.NewHolder()
}

func ProvideHub(l *applogger.Logger, cfg *config.Config, snaps *snapshot.Holder) *hub.Hub {
	return hub.New(l, cfg.Exchange.Category, snaps.Version)
}

// ProvideSignalSink fans results out to the websocket hub, the snapshot
// mirror and, when enabled, Kafka.
func ProvideSignalSink(
	cfg *config.Config,
	l *applogger.Logger,
	h *hub.Hub,
	c cache.Service,
	producer *pkgkafka.Producer,
) repository.SignalSink {
	sinks := []internalrepo.NamedSink{
		{Name: "websocket", Sink: h},
		{Name: "snapshot-mirror", Sink: internalrepo.NewSnapshotMirror(c, 2*cfg.Scanner.Interval)},
	}
	if producer != nil {
		t := cfg.Kafka.Topics
		sinks = append(sinks, internalrepo.NamedSink{
			Name: "kafka",
			Sink: internalrepo.NewKafkaSink(producer, internalrepo.Topics{
				Signals:     t.Signals,
				Alerts:      t.Alerts,
				Validations: t.Validations,
			}),
		})
	}
	return internalrepo.NewMultiSink(l, sinks...)
}

// loopArchive is the archive the loops write to directly. With a consumer
// in place the archive is fed from Kafka instead.
func loopArchive(archive repository.Archive, consumer *pkgkafka.Consumer) repository.Archive {
	if consumer != nil {
		return nil
	}
	return archive
}

func ProvideScanner(
	cfg *config.Config,
	market repository.MarketData,
	engine *usecase.SignalEngine,
	store repository.SignalStore,
	archive repository.Archive,
	consumer *pkgkafka.Consumer,
	sink repository.SignalSink,
	snaps *snapshot.Holder,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Scanner {
	return usecase.NewScanner(market, engine, store, loopArchive(archive, consumer), sink, snaps, m, l, usecase.ScannerConfig{
		Interval:        cfg.Scanner.Interval,
		Backoff:         cfg.Scanner.Backoff,
		Workers:         cfg.Scanner.Workers,
		SymbolLimit:     cfg.Scanner.SymbolLimit,
		Timeframe:       repository.NormalizeTimeframe(cfg.Exchange.Timeframe),
		CandleLimit:     cfg.Exchange.CandleLimit,
		ItemDelay:       cfg.Scanner.ItemDelay,
		SnapshotSignals: cfg.Scanner.SnapshotSignals,
		SnapshotAlerts:  cfg.Scanner.SnapshotAlerts,
		MoversLimit:     cfg.Scanner.MoversLimit,
	})
}

func ProvideValidator(
	cfg *config.Config,
	market repository.MarketData,
	store repository.SignalStore,
	archive repository.Archive,
	consumer *pkgkafka.Consumer,
	sink repository.SignalSink,
	locker repository.Locker,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.Validator {
	return usecase.NewValidator(market, store, loopArchive(archive, consumer), sink, locker, m, l, usecase.ValidatorConfig{
		Interval:    cfg.Validator.Interval,
		Backoff:     cfg.Validator.Backoff,
		Workers:     cfg.Validator.Workers,
		ItemDelay:   cfg.Validator.ItemDelay,
		ActiveLimit: cfg.Validator.ActiveLimit,
		LockTTL:     cfg.Validator.LockTTL,
	})
}

func ProvideQueryUseCase(
	store repository.SignalStore,
	snaps *snapshot.Holder,
	market repository.MarketData,
	engine *usecase.SignalEngine,
) *usecase.QueryUseCase {
	return usecase.NewQueryUseCase(store, snaps, market, engine)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillPerSec)
}

func ProvideHTTPHandler(l *applogger.Logger, queries *usecase.QueryUseCase, h *hub.Hub, limiter *ratelimit.Limiter) xhttp.Handler {
	return api.NewSignalsHandler(l, queries, h, limiter)
}

func ProvideHTTPServer(cfg *config.Config, handler xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	return xhttp.NewServer(handler, l, opts...)
}

// ProvideApp assembles the application. Clients are closed by the injector's
// cleanup, after Run returns.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	scanner *usecase.Scanner,
	validator *usecase.Validator,
	h *hub.Hub,
	httpServer *xhttp.Server,
	limiter *ratelimit.Limiter,
	consumer *pkgkafka.Consumer,
	handlers []pkgkafka.MessageHandler,
) *server.App {
	app := server.New(cfg, l, scanner, validator, h, httpServer)
	app.SetLimiter(limiter)
	if consumer != nil {
		app.SetConsumer(consumer, handlers...)
	}
	return app
}
