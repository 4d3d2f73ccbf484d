package app

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Gunvolt24/quotes/config"
	"github.com/Gunvolt24/quotes/pkg/serde"
)

type warnCounter struct{ warns int }

func (w *warnCounter) Infof(context.Context, string, ...any)  {}
func (w *warnCounter) Warnf(context.Context, string, ...any)  { w.warns++ }
func (w *warnCounter) Errorf(context.Context, string, ...any) {}

func TestApplyGinMode(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	cases := []struct {
		in    string
		want  string
		warns int
	}{
		{"release", gin.ReleaseMode, 0},
		{" Test ", gin.TestMode, 0},
		{"", gin.DebugMode, 0},
		{"verbose", gin.DebugMode, 1},
	}
	for _, tc := range cases {
		w := &warnCounter{}
		applyGinMode(context.Background(), tc.in, w)
		require.Equal(t, tc.want, gin.Mode(), tc.in)
		require.Equal(t, tc.warns, w.warns, tc.in)
	}
}

func TestQuoteDeserializer_Strictness(t *testing.T) {
	raw := []byte(`{"id":"q","symbol":"EUR/USD","bid":1,"ask":2,"timestamp":"2024-03-01T10:15:30Z","venue":"x"}`)

	_, err := quoteDeserializer(false).Deserialize("t", raw)
	require.NoError(t, err)

	_, err = quoteDeserializer(true).Deserialize("t", raw)
	require.ErrorIs(t, err, serde.ErrDecode)
}

func TestNewMetricsServer(t *testing.T) {
	cfg := &config.Config{}
	cfg.HTTP.Addr = ":8080"

	cfg.Metrics.Addr = ""
	require.Nil(t, newMetricsServer(cfg))

	cfg.Metrics.Addr = ":8080"
	require.Nil(t, newMetricsServer(cfg))

	cfg.Metrics.Addr = ":2112"
	srv := newMetricsServer(cfg)
	require.NotNil(t, srv)
	require.Equal(t, ":2112", srv.Addr)
}
