package kafka

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"

	"github.com/Gunvolt24/quotes/internal/ports"
	"github.com/Gunvolt24/quotes/pkg/metrics"
	"github.com/Gunvolt24/quotes/pkg/serde"
	"github.com/Gunvolt24/quotes/pkg/telemetry"
)

// Проверка, что Consumer удовлетворяет интерфейсу верхнего уровня (порт приложения).
var _ ports.MessageConsumer = (*Consumer[struct{}])(nil)

// RecordHandler — бизнес-логика над уже декодированной записью.
type RecordHandler[T any] interface {
	Handle(ctx context.Context, record T) error
}

// HandlerFunc — функция как RecordHandler.
type HandlerFunc[T any] func(ctx context.Context, record T) error

func (f HandlerFunc[T]) Handle(ctx context.Context, record T) error { return f(ctx, record) }

// Consumer — обёртка над kafka.Reader: значение каждого сообщения проходит через
// десериализатор T и уходит в обработчик.
type Consumer[T any] struct {
	reader         reader
	deserializer   serde.Deserializer[T]
	handler        RecordHandler[T]
	log            ports.Logger
	tracer         trace.Tracer
	processTimeout time.Duration
	retryInitial   time.Duration
	retryMax       time.Duration
	jitterRand     *rand.Rand
	closeOnce      sync.Once
}

// NewConsumer — конструктор. ReaderConfig() настроен на ручной коммит оффсетов.
func NewConsumer[T any](
	cfg *ConsumerConfig,
	deserializer serde.Deserializer[T],
	handler RecordHandler[T],
	log ports.Logger,
) *Consumer[T] {
	rc := cfg.ReaderConfig()
	// внутренние ошибки kafka-go (ребаланс, потеря соединения): в общий лог
	rc.ErrorLogger = kafka.LoggerFunc(func(format string, args ...any) {
		log.Warnf(context.Background(), "kafka reader: "+format, args...)
	})
	reader := kafka.NewReader(rc)

	// Параметры по умолчанию (если не заданы в конфиге)
	pt := cfg.ProcessTimeout
	if pt <= 0 {
		pt = 5 * time.Second
	}

	rInit := cfg.RetryInitial
	if rInit <= 0 {
		rInit = 1 * time.Second
	}

	rMax := cfg.RetryMax
	if rMax <= 0 {
		rMax = 30 * time.Second
	}

	return &Consumer[T]{
		reader:         reader,
		deserializer:   deserializer,
		handler:        handler,
		log:            log,
		tracer:         telemetry.Tracer(),
		processTimeout: pt,
		retryInitial:   rInit,
		retryMax:       rMax,
		// jitterRand — источник случайности, чтобы рассинхронизировать экспоненциальный backoff.
		jitterRand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run — основной цикл:
// 1) читаем сообщение без авто-коммита;
// 2) десериализуем значение; мусор → лог и CommitMessages (пропускаем навсегда);
// 3) успешная обработка → CommitMessages;
// 4) невалидная котировка → лог и CommitMessages;
// 5) временная ошибка → без коммита, повтор того же сообщения с backoff,
//    пока обработка не пройдёт или контекст не отменят (at-least-once).
func (c *Consumer[T]) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "kafka consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	// Экспоненциальный backoff на ошибках FetchMessage с equal-jitter
	retry := c.retryInitial

	for {
		msg, fetchErr := c.reader.FetchMessage(ctx)
		if fetchErr != nil {
			// Если контекст отменен -> выходим
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Иначе - временная ошибка брокера/сети. Ожидаем и повторяем
			sleep := c.withJitterEqual(retry)
			c.log.Warnf(ctx, "fetch failed: %v (will retry in %s)", fetchErr, sleep)
			if !c.sleepWithBackoff(ctx, sleep) {
				return ctx.Err()
			}
			retry = c.nextBackoff(retry)
			continue
		}

		retry = c.retryInitial

		topic := msg.Topic
		if topic == "" {
			topic = rc.Topic
		}
		metrics.KafkaMessagesConsumed.WithLabelValues(topic).Inc()

		if !c.processUntilDone(ctx, topic, &msg) {
			return ctx.Err()
		}
		c.commitSafely(ctx, &msg)
	}
}

// processUntilDone повторяет обработку одного сообщения, пока оно не станет
// готово к коммиту. Следующее сообщение партиции не читается раньше: коммит
// более позднего оффсета сдвинул бы позицию группы за необработанное.
// false означает отмену контекста.
func (c *Consumer[T]) processUntilDone(ctx context.Context, topic string, msg *kafka.Message) bool {
	wait := c.retryInitial
	for attempt := 1; ; attempt++ {
		if c.handleMessage(ctx, topic, msg) {
			return true
		}
		sleep := c.withJitterEqual(wait)
		c.log.Warnf(ctx, "retrying offset=%d attempt=%d in %s", msg.Offset, attempt+1, sleep)
		if !c.sleepWithBackoff(ctx, sleep) {
			return false
		}
		wait = c.nextBackoff(wait)
	}
}

// Close - закрывает reader. Вызывается при остановке приложения.
func (c *Consumer[T]) Close() (retErr error) {
	c.closeOnce.Do(func() {
		retErr = c.reader.Close()
	})
	return retErr
}
