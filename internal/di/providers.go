package di

import (
	"fmt"
	"net"
	"strconv"

	"ApexCore/internal/domain/models"
	"ApexCore/internal/domain/repository"
	"ApexCore/internal/engine"
	"ApexCore/internal/handler/api"
	mid "ApexCore/internal/middleware"
	internalrepo "ApexCore/internal/repository"
	"ApexCore/internal/service/feed"
	"ApexCore/internal/usecase"
	pkgcache "ApexCore/pkg/cache"
	"ApexCore/pkg/config"
	xhttp "ApexCore/pkg/http"
	pkgkafka "ApexCore/pkg/kafka"
	applogger "ApexCore/pkg/logger"
	"ApexCore/pkg/metrics"
	"ApexCore/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	if cfg.Strategy.Debug {
		level = "debug"
	}
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideInstrument builds the traded instrument from config.
func ProvideInstrument(cfg *config.Config) models.Instrument {
	return models.Instrument{
		Symbol:    cfg.Instrument.Symbol,
		TickSize:  cfg.Instrument.TickSize,
		TickValue: cfg.Instrument.TickValue,
	}
}

// ProvideTracker creates the shadow account the guard reads. The live
// service has no broker connection; fills are tracked against bar data.
func ProvideTracker(inst models.Instrument) *usecase.SimAccount {
	return usecase.NewSimAccount(inst)
}

// ProvideEngine creates the decision engine.
func ProvideEngine(cfg *config.Config, inst models.Instrument, tracker *usecase.SimAccount, l *applogger.Logger) *engine.Engine {
	return engine.New(cfg.Strategy, inst, tracker, l)
}

// ProvideIntentSink creates the intent sink for the configured backend.
func ProvideIntentSink(cfg *config.Config, l *applogger.Logger) (repository.IntentSink, error) {
	switch cfg.Intents.Backend {
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
			pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
			pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
			pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaIntentSink(producer, cfg.Kafka.IntentTopic), nil
	case "log":
		return internalrepo.NewLogIntentSink(l), nil
	default:
		return nil, fmt.Errorf("unknown intents backend: %s", cfg.Intents.Backend)
	}
}

// ProvideStatusStore creates the snapshot store: Redis when enabled,
// in-process memory otherwise so the status API always has something to
// read.
func ProvideStatusStore(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Status.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	host, port, err := splitHostPort(cfg.Status.Addr)
	if err != nil {
		return nil, fmt.Errorf("status addr: %w", err)
	}
	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Status.Password),
		pkgcache.WithRedisDB(cfg.Status.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideStatusPublisher creates the cache-backed status publisher.
func ProvideStatusPublisher(store pkgcache.Service, cfg *config.Config) *internalrepo.CacheStatusPublisher {
	return internalrepo.NewCacheStatusPublisher(store, cfg.Status.TTL)
}

// ProvideBarProcessor creates the bar processor use case.
func ProvideBarProcessor(
	eng *engine.Engine,
	sink repository.IntentSink,
	status *internalrepo.CacheStatusPublisher,
	tracker *usecase.SimAccount,
	m repository.Metrics,
) *usecase.BarProcessor {
	return usecase.NewBarProcessor(eng, sink, status, tracker, m)
}

// ProvideBarPipeline creates the validation/ordering pipeline.
func ProvideBarPipeline(proc *usecase.BarProcessor, m repository.Metrics, cfg *config.Config) *mid.BarPipeline {
	return mid.NewBarPipeline(proc, m, mid.WithSymbol(cfg.Instrument.Symbol))
}

// ProvideBarCollector creates the WebSocket collector, or nil when the
// feed source is kafka.
func ProvideBarCollector(
	cfg *config.Config,
	proc *usecase.BarProcessor,
	m repository.Metrics,
	pipe *mid.BarPipeline,
) *usecase.BarCollector {
	if cfg.Feed.Source != "websocket" {
		return nil
	}
	stream := feed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Instrument.Symbol,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
	return usecase.NewBarCollector(stream, proc, m, pipe)
}

// ProvideKafkaConsumer creates the bar consumer, or nil when the feed
// source is websocket. Exactly one worker: the engine requires bars in
// order.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if cfg.Feed.Source != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(1),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaBarsHandler registers the handler for the bars topic.
func ProvideKafkaBarsHandler(pipe *mid.BarPipeline, m repository.Metrics, cfg *config.Config) *usecase.KafkaBarsHandler {
	return usecase.NewKafkaBarsHandler(cfg.Kafka.BarsTopic, pipe, m)
}

// ProvideStatusHandler creates the HTTP diagnostic handler.
func ProvideStatusHandler(
	l *applogger.Logger,
	collector *usecase.BarCollector,
	status *internalrepo.CacheStatusPublisher,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewStatusEchoHandler(l, collector, status, cfg.Instrument.Symbol)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.BarCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaBarsHandler,
	proc *usecase.BarProcessor,
	handler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	var mh pkgkafka.MessageHandler
	if kh != nil {
		mh = kh
	}
	app := server.New(cfg, l, collector, consumer, mh, proc)
	app.SetHTTPHandler(handler)
	return app
}

func splitHostPort(addr string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("port %q: %w", portStr, err)
	}
	return host, port, nil
}
