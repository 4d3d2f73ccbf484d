package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type ProducerConfig struct {
	Brokers                []string
	Topic                  string
	RequiredAcks           string        // all|one|none
	BatchTimeout           time.Duration // сколько ждать добора батча
	WriteTimeout           time.Duration
	AllowAutoTopicCreation bool
}

// Writer — kafka.Writer с балансировкой по ключу (Hash): порядок сообщений
// одного ключа сохраняется в пределах партиции.
func (c *ProducerConfig) Writer() *kafka.Writer {
	bt := c.BatchTimeout
	if bt <= 0 {
		bt = 10 * time.Millisecond
	}
	wt := c.WriteTimeout
	if wt <= 0 {
		wt = 10 * time.Second
	}

	return &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           c.requiredAcks(),
		BatchTimeout:           bt,
		WriteTimeout:           wt,
		AllowAutoTopicCreation: c.AllowAutoTopicCreation,
	}
}

func (c *ProducerConfig) requiredAcks() kafka.RequiredAcks {
	switch strings.ToLower(strings.TrimSpace(c.RequiredAcks)) {
	case "one", "1":
		return kafka.RequireOne
	case "none", "0":
		return kafka.RequireNone
	default:
		return kafka.RequireAll
	}
}
