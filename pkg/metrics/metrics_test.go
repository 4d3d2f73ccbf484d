package metrics_test

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/quotes/pkg/metrics"
)

func TestMustRegister_IsIdempotent(t *testing.T) {
	require.NotPanics(t, func() {
		metrics.MustRegister()
		metrics.MustRegister()
	})
}

// Повторная регистрация в том же реестре не ошибка.
func TestRegister_FreshRegistryTwice(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()

	require.NoError(t, metrics.Register(reg))
	require.NoError(t, metrics.Register(reg))
}

func TestRegister_ExposesQuotesNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, metrics.Register(reg))

	// векторы без меток не попадают в выдачу: задаём хотя бы одну серию
	metrics.KafkaMessagesConsumed.WithLabelValues("ns-check").Inc()
	metrics.CacheOps.WithLabelValues("hit").Add(0)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	for _, f := range families {
		require.True(t, strings.HasPrefix(f.GetName(), "quotes_"), f.GetName())
	}
}

func TestKafkaCounters_PerTopic(t *testing.T) {
	counters := map[string]*prometheus.CounterVec{
		"consumed":  metrics.KafkaMessagesConsumed,
		"processed": metrics.KafkaMessagesProcessed,
		"failed":    metrics.KafkaMessagesFailed,
		"decode":    metrics.KafkaDecodeErrors,
		"published": metrics.KafkaMessagesPublished,
	}
	for name, vec := range counters {
		a := testutil.ToFloat64(vec.WithLabelValues("topic-a"))
		b := testutil.ToFloat64(vec.WithLabelValues("topic-b"))

		vec.WithLabelValues("topic-a").Add(2)

		require.Equal(t, a+2, testutil.ToFloat64(vec.WithLabelValues("topic-a")), name)
		require.Equal(t, b, testutil.ToFloat64(vec.WithLabelValues("topic-b")), name)
	}
}

func TestKafkaProcessDuration_Observe(t *testing.T) {
	const topic = "duration-check"

	metrics.KafkaProcessDuration.WithLabelValues(topic).Observe(0.003)
	metrics.KafkaProcessDuration.WithLabelValues(topic).Observe(0.2)

	// одна серия-гистограмма на топик
	require.Equal(t, 1, testutil.CollectAndCount(metrics.KafkaProcessDuration))
}

func TestCacheMetrics(t *testing.T) {
	hit := testutil.ToFloat64(metrics.CacheOps.WithLabelValues("hit"))
	miss := testutil.ToFloat64(metrics.CacheOps.WithLabelValues("miss"))

	metrics.CacheOps.WithLabelValues("hit").Inc()
	require.Equal(t, hit+1, testutil.ToFloat64(metrics.CacheOps.WithLabelValues("hit")))
	require.Equal(t, miss, testutil.ToFloat64(metrics.CacheOps.WithLabelValues("miss")))

	cur := testutil.ToFloat64(metrics.CacheSize)
	metrics.CacheSize.Set(cur + 5)
	require.Equal(t, cur+5, testutil.ToFloat64(metrics.CacheSize))
	metrics.CacheSize.Set(cur)
}
