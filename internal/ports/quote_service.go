package ports

import (
	"context"

	"github.com/Gunvolt24/quotes/internal/domain"
)

// QuoteService — то, что нужно HTTP-слою от прикладного сервиса.
type QuoteService interface {
	Latest(ctx context.Context, symbol string) (*domain.Quote, error)
	History(ctx context.Context, symbol string, limit, offset int) ([]*domain.Quote, error)
	Publish(ctx context.Context, quote domain.Quote) (*domain.Quote, error)
}
