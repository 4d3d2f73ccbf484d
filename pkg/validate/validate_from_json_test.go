package validate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/pkg/serde"
)

func TestValidateQuoteFromJSON_OK(t *testing.T) {
	ctx := context.Background()

	quote, err := ValidateQuoteFromJSON(ctx, domain.NewQuoteDeserializer(), NewQuoteValidator(), []byte(quoteJSON("q-1", "EUR/USD", "1.1", "1.2")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.ID != "q-1" || quote.Symbol != "EUR/USD" {
		t.Fatalf("unexpected quote: %+v", quote)
	}
}

func TestValidateQuoteFromJSON_UnknownField_Strict(t *testing.T) {
	ctx := context.Background()
	strict := domain.NewQuoteDeserializer(serde.WithDisallowUnknownFields())

	raw := `{"venue":"x",` + quoteJSON("q-2", "EUR/USD", "1.1", "1.2")[1:]
	_, err := ValidateQuoteFromJSON(ctx, strict, NewQuoteValidator(), []byte(raw))
	if err == nil || !strings.Contains(err.Error(), "invalid json") || !errors.Is(err, serde.ErrDecode) {
		t.Fatalf("expected invalid json error, got: %v", err)
	}

	// Без strict-режима лишнее поле игнорируется.
	if _, err := ValidateQuoteFromJSON(ctx, domain.NewQuoteDeserializer(), NewQuoteValidator(), []byte(raw)); err != nil {
		t.Fatalf("lenient decoder should accept unknown field, got %v", err)
	}
}

func TestValidateQuoteFromJSON_TrailingData(t *testing.T) {
	ctx := context.Background()

	raw := quoteJSON("q-3", "EUR/USD", "1.1", "1.2") + "{}"
	_, err := ValidateQuoteFromJSON(ctx, domain.NewQuoteDeserializer(), NewQuoteValidator(), []byte(raw))
	if err == nil || !strings.Contains(err.Error(), "trailing data") {
		t.Fatalf("expected trailing data error, got: %v", err)
	}
}

func TestValidateQuoteFromJSON_DomainError(t *testing.T) {
	ctx := context.Background()

	// Не валиден: ask < bid
	raw := quoteJSON("q-4", "EUR/USD", "1.3", "1.2")
	_, err := ValidateQuoteFromJSON(ctx, domain.NewQuoteDeserializer(), NewQuoteValidator(), []byte(raw))
	if !errors.Is(err, ErrInvalidQuote) {
		t.Fatalf("expected domain validation error, got %v", err)
	}
}

// ---- helpers ----

func quoteJSON(id, symbol, bid, ask string) string {
	return `{"id":"` + id + `","symbol":"` + symbol + `","bid":` + bid + `,"ask":` + ask +
		`,"timestamp":"2024-03-01T10:15:30Z"}`
}
