package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Gunvolt24/quotes/pkg/ctxmeta"
	"github.com/Gunvolt24/quotes/pkg/metrics"
	"github.com/Gunvolt24/quotes/pkg/telemetry"
	"github.com/Gunvolt24/quotes/pkg/validate"
)

// handleMessage декодирует и обрабатывает одно сообщение; результат: нужно ли коммитить оффсет.
func (c *Consumer[T]) handleMessage(ctx context.Context, topic string, msg *kafka.Message) bool {
	ctx = telemetry.ExtractKafka(ctx, msg)
	ctx = ctxmeta.WithMessage(ctx, ctxmeta.Message{Topic: topic, Partition: msg.Partition, Offset: msg.Offset})

	ctx, span := c.tracer.Start(ctx, "kafka.consume "+topic,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", topic),
			attribute.Int("messaging.kafka.partition", msg.Partition),
			attribute.Int64("messaging.kafka.offset", msg.Offset),
		),
	)
	defer span.End()

	record, err := c.deserializer.Deserialize(topic, msg.Value)
	if err != nil {
		// Мусор не станет валидным при повторе: пропускаем и коммитим
		metrics.KafkaDecodeErrors.WithLabelValues(topic).Inc()
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode")
		c.log.Warnf(ctx, "undecodable message offset=%d: %v (skipped)", msg.Offset, err)
		return true
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, c.processTimeout)
	start := time.Now()
	err = c.handler.Handle(ctxTimeout, record)
	cancel()

	switch {
	case err == nil:
		metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
		metrics.KafkaProcessDuration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
		return true
	case errors.Is(err, validate.ErrInvalidQuote):
		// Невалидные данные: логируем и коммитим, чтобы не обрабатывать повторно
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		span.SetStatus(codes.Error, "invalid")
		c.log.Warnf(ctx, "invalid message offset=%d: %v (skipped)", msg.Offset, err)
		return true
	default:
		// Временная ошибка (БД/сеть/таймаут): НЕ коммитим
		metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "retry")
		c.log.Warnf(ctx, "process failed offset=%d: %v (will retry without commit)", msg.Offset, err)
		return false
	}
}

func (c *Consumer[T]) commitSafely(ctx context.Context, msg *kafka.Message) {
	if err := c.reader.CommitMessages(ctx, *msg); err != nil {
		c.log.Warnf(ctx, "commit failed offset=%d: %v", msg.Offset, err)
	}
}

// sleepWithBackoff — false, если контекст отменён раньше.
func (c *Consumer[T]) sleepWithBackoff(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer[T]) nextBackoff(current time.Duration) time.Duration {
	return min(current*2, c.retryMax)
}

// withJitterEqual — половина задержки фиксирована, вторая половина случайна.
func (c *Consumer[T]) withJitterEqual(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(c.jitterRand.Int63n(int64(d-half)+1))
}
