//go:build integration

package testutil

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// UniqueTopicAndGroup — уникальные topic и group на тест, чтобы тесты не читали чужие оффсеты.
func UniqueTopicAndGroup(base string) (topic, group string) {
	suffix := strings.ReplaceAll(uuid.NewString()[:13], "-", "")
	return base + "-" + suffix, base + "-g-" + suffix
}

// EnsureTopic — топик с одной партицией.
func EnsureTopic(ctx context.Context, broker, topic string) error {
	return EnsureTopicPartitions(ctx, broker, topic, 1)
}

// EnsureTopicPartitions создаёт топик (существующий: не ошибка) и ждёт,
// пока все партиции появятся в метаданных. broker: "host:port",
// "PLAINTEXT://host:port" или список через запятую (берётся первый).
func EnsureTopicPartitions(ctx context.Context, broker, topic string, partitions int) error {
	client := &kafka.Client{Addr: kafka.TCP(bootstrapAddr(broker)), Timeout: 10 * time.Second}

	resp, err := client.CreateTopics(ctx, &kafka.CreateTopicsRequest{
		Topics: []kafka.TopicConfig{{
			Topic:             topic,
			NumPartitions:     partitions,
			ReplicationFactor: 1,
		}},
	})
	if err != nil {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	if terr := resp.Errors[topic]; terr != nil && !errors.Is(terr, kafka.TopicAlreadyExists) {
		return fmt.Errorf("create topic %q: %w", topic, terr)
	}

	return waitPartitions(ctx, client, topic, partitions)
}

// WriteValues — синхронная запись сырых значений без ключей (по сообщению на значение).
// Нужна, чтобы положить в топик то, что продюсер приложения не отправит: мусор, null, невалидные котировки.
func WriteValues(ctx context.Context, brokers []string, topic string, values ...[]byte) error {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		// одна партиция на вызов: порядок значений сохраняется
		Balancer: kafka.BalancerFunc(func(kafka.Message, ...int) int { return 0 }),
	}
	defer w.Close()

	msgs := make([]kafka.Message, len(values))
	for i, v := range values {
		msgs[i] = kafka.Message{Value: v}
	}
	return w.WriteMessages(ctx, msgs...)
}

func bootstrapAddr(raw string) string {
	first, _, _ := strings.Cut(raw, ",")
	first = strings.TrimSpace(first)

	if strings.Contains(first, "://") {
		if u, err := url.Parse(first); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return first
}

func waitPartitions(ctx context.Context, client *kafka.Client, topic string, want int) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var lastErr error
	for {
		meta, err := client.Metadata(ctx, &kafka.MetadataRequest{Topics: []string{topic}})
		switch {
		case err != nil:
			lastErr = err
		case len(meta.Topics) == 1 && meta.Topics[0].Error != nil:
			lastErr = meta.Topics[0].Error
		case len(meta.Topics) == 1 && len(meta.Topics[0].Partitions) >= want:
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("topic %q not ready: %w", topic, errors.Join(ctx.Err(), lastErr))
		case <-time.After(200 * time.Millisecond):
		}
	}
}
