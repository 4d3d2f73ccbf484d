package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Gunvolt24/quotes/config"
	cachemem "github.com/Gunvolt24/quotes/internal/cache/memory"
	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/kafka"
	"github.com/Gunvolt24/quotes/internal/ports"
	"github.com/Gunvolt24/quotes/internal/repo/postgres"
	rest "github.com/Gunvolt24/quotes/internal/transport/http"
	"github.com/Gunvolt24/quotes/internal/usecase"
	"github.com/Gunvolt24/quotes/pkg/logger"
	"github.com/Gunvolt24/quotes/pkg/metrics"
	"github.com/Gunvolt24/quotes/pkg/serde"
	"github.com/Gunvolt24/quotes/pkg/telemetry"
	"github.com/Gunvolt24/quotes/pkg/validate"
)

// App — собранное приложение и его внешние интерфейсы (HTTP, consumer).
type App struct {
	Logger          ports.Logger          // логгер
	HTTPServer      *http.Server          // HTTP-сервер API
	MetricsServer   *http.Server          // отдельный /metrics; nil: не запускается
	KafkaConsumer   ports.MessageConsumer // консьюмер котировок
	gracefulTimeout time.Duration         // время ожидания завершения HTTP-серверов
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// quoteDeserializer — общий для Kafka и POST /quotes; strict отклоняет неизвестные поля.
func quoteDeserializer(strict bool) *domain.QuoteDeserializer {
	if strict {
		return domain.NewQuoteDeserializer(serde.WithDisallowUnknownFields())
	}
	return domain.NewQuoteDeserializer()
}

// newMetricsServer — nil, если адрес пуст или совпадает с адресом API (там уже есть /metrics).
func newMetricsServer(cfg *config.Config) *http.Server {
	addr := strings.TrimSpace(cfg.Metrics.Addr)
	if addr == "" || addr == cfg.HTTP.Addr {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией).
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Пул подключений Postgres (с повторами до ConnectTimeout).
	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:            cfg.Postgres.DSN,
		MaxConns:       cfg.Postgres.MaxConns,
		ConnectTimeout: cfg.Postgres.ConnectTimeout,
	})
	if err != nil {
		if cErr := cleanupLogger(); cErr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cErr)
		}
		return nil, func() {}, err
	}

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию: no-op.
	shutdownTrace := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, telemetry.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Продюсер нужен только для POST /quotes; без него сервис отвечает 503.
	var (
		producer  *kafka.Producer[domain.Quote]
		publisher ports.QuotePublisher
	)
	if cfg.Kafka.PublishEnabled {
		producer = kafka.NewProducer(&kafka.ProducerConfig{
			Brokers:                cfg.Kafka.Brokers,
			Topic:                  cfg.Kafka.Topic,
			RequiredAcks:           cfg.Kafka.RequiredAcks,
			BatchTimeout:           cfg.Kafka.BatchTimeout,
			WriteTimeout:           cfg.Kafka.WriteTimeout,
			AllowAutoTopicCreation: cfg.Kafka.AutoCreateTopic,
		}, domain.NewQuoteSerializer(), kafka.QuoteKey)
		publisher = producer
	}

	// Сборка зависимостей доменного слоя.
	quoteCache := cachemem.NewLRUCacheTTL(cfg.Cache.Capacity, cfg.Cache.TTL)
	quoteRepo := postgres.NewQuoteRepository(pool)
	quoteValidator := validate.NewQuoteValidator()
	quoteService := usecase.NewQuoteService(quoteRepo, quoteCache, publisher, logg, quoteValidator)

	// Прогрев кэша последними котировками по символам.
	if n := cfg.Cache.WarmUpN; n > 0 {
		if err := quoteService.WarmUpCache(ctx, n); err != nil {
			logg.Warnf(ctx, "warm-up cache failed: %v", err)
		} else {
			logg.Infof(ctx, "cache warmed up symbols=%d", quoteCache.Len())
		}
	}

	// Режим Gin.
	applyGinMode(ctx, cfg.HTTP.GinMode, logg)

	// Имя сервиса для otelgin (только при включённом трейсинге).
	otelServiceName := ""
	if cfg.Tracing.Enabled {
		otelServiceName = cfg.Tracing.ServiceName
	}

	deserializer := quoteDeserializer(cfg.Kafka.StrictDecoding)

	// Роутер и HTTP-сервер.
	httpHandler := rest.NewHandler(quoteService, deserializer, logg, cfg.HTTP.HandlerTimeout)
	router := rest.NewRouter(httpHandler, cfg.HTTP.StaticDir, otelServiceName)

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	// Конфигурация и создание консьюмера Kafka.
	kafkaCfg := kafka.ConsumerConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		Topic:          cfg.Kafka.Topic,
		StartOffset:    cfg.Kafka.StartOffset,
		ProcessTimeout: cfg.Kafka.ProcessTimeout,
		RetryInitial:   cfg.Kafka.RetryInitial,
		RetryMax:       cfg.Kafka.RetryMax,
	}
	consumer := kafka.NewConsumer(&kafkaCfg, deserializer,
		kafka.HandlerFunc[domain.Quote](quoteService.HandleQuote), logg)

	app := &App{
		Logger:          logg,
		HTTPServer:      httpSrv,
		MetricsServer:   newMetricsServer(cfg),
		KafkaConsumer:   consumer,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке).
	cleanup := func() {
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		if err := consumer.Close(); err != nil {
			logg.Warnf(ctx, "kafka consumer close error: %v", err)
		}
		if producer != nil {
			if err := producer.Close(); err != nil {
				logg.Warnf(ctx, "kafka producer close error: %v", err)
			}
		}

		pool.Close()
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// serve — ListenAndServe в фоне; штатная остановка (ErrServerClosed) ошибкой не считается.
func (a *App) serve(ctx context.Context, name string, srv *http.Server, errCh chan<- error) {
	go func() {
		a.Logger.Infof(ctx, "%s server starting (addr=%s)", name, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
}

func (a *App) shutdown(ctx, shutdownCtx context.Context, name string, srv *http.Server) {
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warnf(ctx, "%s server shutdown failed: %v", name, err)
		return
	}
	a.Logger.Infof(ctx, "%s server stopped gracefully", name)
}

// Run — запускает HTTP-серверы и консьюмера; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	// Запуск консьюмера.
	go func() {
		a.Logger.Infof(ctx, "kafka consumer starting")
		if err := a.KafkaConsumer.Run(ctx); err != nil {
			errCh <- err
		}
	}()

	a.serve(ctx, "http", a.HTTPServer, errCh)
	if a.MetricsServer != nil {
		a.serve(ctx, "metrics", a.MetricsServer, errCh)
	}

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gt)
	defer cancel()

	a.shutdown(ctx, shutdownCtx, "http", a.HTTPServer)
	if a.MetricsServer != nil {
		a.shutdown(ctx, shutdownCtx, "metrics", a.MetricsServer)
	}

	// Остановка Kafka-консьюмера
	if err := a.KafkaConsumer.Close(); err != nil {
		a.Logger.Warnf(ctx, "kafka consumer close error: %v", err)
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
