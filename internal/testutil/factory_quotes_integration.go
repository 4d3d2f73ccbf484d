//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/Gunvolt24/quotes/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// QuoteOption — модификатор сгенерированной котировки.
type QuoteOption func(*domain.Quote)

func WithSymbol(symbol string) QuoteOption { return func(q *domain.Quote) { q.Symbol = symbol } }

func WithPrices(bid, ask float64) QuoteOption {
	return func(q *domain.Quote) { q.Bid, q.Ask = bid, ask }
}

func WithTimestamp(ts time.Time) QuoteOption {
	return func(q *domain.Quote) { q.Timestamp = ts.UTC().Truncate(time.Microsecond) }
}

// MakeQuote — валидная котировка с уникальными id и символом.
// Время усечено до микросекунд: точность timestamptz в Postgres.
func MakeQuote(opts ...QuoteOption) domain.Quote {
	q := domain.Quote{
		ID:        "q-" + UniqSuffix(),
		Symbol:    "SYM-" + UniqSuffix(),
		Bid:       1.0842,
		Ask:       1.0844,
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
	}
	for _, opt := range opts {
		opt(&q)
	}
	return q
}
