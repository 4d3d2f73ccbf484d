package validate

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/ports"
)

// Проверка, что QuoteValidator удовлетворяет интерфейсу QuoteValidator.
var _ ports.QuoteValidator = (*QuoteValidator)(nil)

// ErrInvalidQuote — базовая (sentinel error) ошибка валидации.
var ErrInvalidQuote = errors.New("quote validation failed")

// QuoteValidator — проверка доменных инвариантов котировки.
type QuoteValidator struct{}

// NewQuoteValidator — конструктор QuoteValidator.
// Возвращает ErrInvalidQuote (с обёрнутой причиной) при любой проблеме.
func NewQuoteValidator() *QuoteValidator { return &QuoteValidator{} }

// Validate — проверяет корректность полей котировки.
func (v *QuoteValidator) Validate(_ context.Context, quote *domain.Quote) error {
	if quote == nil {
		return fmt.Errorf("%w: котировка не может быть nil", ErrInvalidQuote)
	}
	if quote.ID == "" {
		return fmt.Errorf("%w: id обязателен", ErrInvalidQuote)
	}
	if quote.Symbol == "" {
		return fmt.Errorf("%w: symbol обязателен", ErrInvalidQuote)
	}
	if quote.Timestamp.IsZero() {
		return fmt.Errorf("%w: timestamp обязателен", ErrInvalidQuote)
	}
	return v.validatePrices(quote)
}

// Цены: конечные, положительные, без пересечения bid/ask.
func (v *QuoteValidator) validatePrices(quote *domain.Quote) error {
	if !isPositive(quote.Bid) {
		return fmt.Errorf("%w: bid должен быть положительным (%s)", ErrInvalidQuote, quote.Symbol)
	}
	if !isPositive(quote.Ask) {
		return fmt.Errorf("%w: ask должен быть положительным (%s)", ErrInvalidQuote, quote.Symbol)
	}
	if quote.Ask < quote.Bid {
		return fmt.Errorf("%w: ask < bid (%s: %v < %v)", ErrInvalidQuote, quote.Symbol, quote.Ask, quote.Bid)
	}
	return nil
}

func isPositive(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
