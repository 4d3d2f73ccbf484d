package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/ports"
	"github.com/Gunvolt24/quotes/pkg/metrics"
	"github.com/Gunvolt24/quotes/pkg/serde"
	"github.com/Gunvolt24/quotes/pkg/telemetry"
)

var _ ports.QuotePublisher = (*Producer[domain.Quote])(nil)

// KeyFunc — ключ сообщения для записи (nil — без ключа).
type KeyFunc[T any] func(T) []byte

// QuoteKey — котировки одного инструмента попадают в одну партицию.
func QuoteKey(q domain.Quote) []byte { return q.PartitionKey() }

// Producer — публикация записей T в один топик.
type Producer[T any] struct {
	writer     writer
	topic      string
	serializer serde.Serializer[T]
	key        KeyFunc[T]
	tracer     trace.Tracer
	closeOnce  sync.Once
}

// NewProducer — конструктор; key может быть nil.
func NewProducer[T any](cfg *ProducerConfig, serializer serde.Serializer[T], key KeyFunc[T]) *Producer[T] {
	return &Producer[T]{
		writer:     cfg.Writer(),
		topic:      cfg.Topic,
		serializer: serializer,
		key:        key,
		tracer:     telemetry.Tracer(),
	}
}

// Publish — сериализует записи и отправляет одним батчем.
// Ошибка сериализации любой записи отменяет весь батч.
func (p *Producer[T]) Publish(ctx context.Context, records ...T) error {
	if len(records) == 0 {
		return nil
	}

	ctx, span := p.tracer.Start(ctx, "kafka.publish "+p.topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination.name", p.topic),
			attribute.Int("messaging.batch.message_count", len(records)),
		),
	)
	defer span.End()

	msgs := make([]kafka.Message, 0, len(records))
	for _, rec := range records {
		value, err := p.serializer.Serialize(p.topic, rec)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode")
			return err
		}
		msg := kafka.Message{Value: value}
		if p.key != nil {
			msg.Key = p.key(rec)
		}
		telemetry.InjectKafka(ctx, &msg)
		msgs = append(msgs, msg)
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write")
		return fmt.Errorf("kafka write topic=%s: %w", p.topic, err)
	}

	metrics.KafkaMessagesPublished.WithLabelValues(p.topic).Add(float64(len(msgs)))
	return nil
}

// Close — сбрасывает буфер и закрывает writer.
func (p *Producer[T]) Close() (retErr error) {
	p.closeOnce.Do(func() {
		retErr = p.writer.Close()
	})
	return retErr
}
