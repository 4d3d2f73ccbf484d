package ports

import (
	"context"

	"github.com/Gunvolt24/quotes/internal/domain"
)

type QuoteValidator interface {
	Validate(ctx context.Context, quote *domain.Quote) error
}
