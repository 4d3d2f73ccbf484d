package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string // first|earliest или last|latest

	ProcessTimeout time.Duration // таймаут обработки одной записи
	RetryInitial   time.Duration // стартовая пауза backoff при ошибках fetch
	RetryMax       time.Duration // потолок backoff

	// Котировки маленькие и частые: по умолчанию не копим батч дольше MaxWait.
	MinBytes int
	MaxBytes int
	MaxWait  time.Duration
}

const (
	defaultMinBytes = 1
	defaultMaxBytes = 1 << 20
	defaultMaxWait  = 500 * time.Millisecond
)

// ParseStartOffset — позиция для новой группы; всё, кроме first/earliest, читается с конца.
func ParseStartOffset(s string) int64 {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first", "earliest":
		return kafka.FirstOffset
	default:
		return kafka.LastOffset
	}
}

// ReaderConfig — конфигурация kafka.Reader с ручным коммитом оффсетов (CommitInterval = 0).
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		StartOffset:    ParseStartOffset(c.StartOffset),
		CommitInterval: 0,
		MinBytes:       c.MinBytes,
		MaxBytes:       c.MaxBytes,
		MaxWait:        c.MaxWait,
	}
	if rc.MinBytes <= 0 {
		rc.MinBytes = defaultMinBytes
	}
	if rc.MaxBytes < rc.MinBytes {
		rc.MaxBytes = max(defaultMaxBytes, rc.MinBytes)
	}
	if rc.MaxWait <= 0 {
		rc.MaxWait = defaultMaxWait
	}
	return rc
}
