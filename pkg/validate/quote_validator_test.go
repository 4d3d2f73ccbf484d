package validate_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/pkg/validate"
)

func validQuote() *domain.Quote {
	return &domain.Quote{
		ID:        "q-1",
		Symbol:    "EUR/USD",
		Bid:       1.0842,
		Ask:       1.0844,
		Timestamp: time.Date(2024, 3, 1, 10, 15, 30, 0, time.UTC),
	}
}

func TestQuoteValidator_OK(t *testing.T) {
	t.Parallel()

	if err := validate.NewQuoteValidator().Validate(context.Background(), validQuote()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQuoteValidator_LockedMarketAllowed(t *testing.T) {
	t.Parallel()

	q := validQuote()
	q.Ask = q.Bid
	if err := validate.NewQuoteValidator().Validate(context.Background(), q); err != nil {
		t.Fatalf("bid == ask must be valid, got %v", err)
	}
}

func TestQuoteValidator_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(q *domain.Quote)
		wantMsg string
	}{
		{"empty id", func(q *domain.Quote) { q.ID = "" }, "id"},
		{"empty symbol", func(q *domain.Quote) { q.Symbol = "" }, "symbol"},
		{"zero timestamp", func(q *domain.Quote) { q.Timestamp = time.Time{} }, "timestamp"},
		{"zero bid", func(q *domain.Quote) { q.Bid = 0 }, "bid"},
		{"negative ask", func(q *domain.Quote) { q.Ask = -1 }, "ask"},
		{"NaN bid", func(q *domain.Quote) { q.Bid = math.NaN() }, "bid"},
		{"Inf ask", func(q *domain.Quote) { q.Ask = math.Inf(1) }, "ask"},
		{"crossed", func(q *domain.Quote) { q.Ask = q.Bid - 0.001 }, "ask < bid"},
	}

	v := validate.NewQuoteValidator()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := validQuote()
			tt.mutate(q)
			err := v.Validate(context.Background(), q)
			if !errors.Is(err, validate.ErrInvalidQuote) {
				t.Fatalf("want ErrInvalidQuote, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestQuoteValidator_Nil(t *testing.T) {
	t.Parallel()

	if err := validate.NewQuoteValidator().Validate(context.Background(), nil); !errors.Is(err, validate.ErrInvalidQuote) {
		t.Fatalf("want ErrInvalidQuote for nil, got %v", err)
	}
}
