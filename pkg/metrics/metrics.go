package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "quotes"

// Kafka: по метке topic.
var (
	KafkaMessagesConsumed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kafka_messages_consumed_total",
		Help:      "Messages fetched from Kafka",
	}, []string{"topic"})

	KafkaMessagesProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kafka_messages_processed_total",
		Help:      "Messages handled successfully",
	}, []string{"topic"})

	KafkaMessagesFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kafka_messages_failed_total",
		Help:      "Messages that failed decoding, validation or handling",
	}, []string{"topic"})

	KafkaDecodeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kafka_decode_errors_total",
		Help:      "Messages whose value could not be deserialized",
	}, []string{"topic"})

	KafkaMessagesPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "kafka_messages_published_total",
		Help:      "Messages written to Kafka",
	}, []string{"topic"})

	// KafkaProcessDuration — время обработчика для успешно обработанных сообщений.
	KafkaProcessDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "kafka_process_duration_seconds",
		Help:      "Handler latency of successfully processed messages",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"topic"})
)

// Кэш последних котировок.
var (
	CacheOps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_operations_total",
		Help:      "Cache operations",
	}, []string{"op"}) // hit|miss|evicted|expired|stale

	CacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_size",
		Help:      "Symbols currently cached",
	})
)

func collectors() []prometheus.Collector {
	return []prometheus.Collector{
		KafkaMessagesConsumed, KafkaMessagesProcessed, KafkaMessagesFailed,
		KafkaDecodeErrors, KafkaMessagesPublished, KafkaProcessDuration,
		CacheOps, CacheSize,
	}
}

// Register регистрирует все метрики в reg; уже зарегистрированные пропускаются.
func Register(reg prometheus.Registerer) error {
	var errs []error
	for _, c := range collectors() {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var registerOnce sync.Once

// MustRegister — регистрация в глобальном реестре; повторные вызовы ничего не делают.
func MustRegister() {
	registerOnce.Do(func() {
		if err := Register(prometheus.DefaultRegisterer); err != nil {
			panic(err)
		}
	})
}
