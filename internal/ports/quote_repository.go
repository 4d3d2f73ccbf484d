package ports

import (
	"context"

	"github.com/Gunvolt24/quotes/internal/domain"
)

type QuoteRepository interface {
	Save(ctx context.Context, quote *domain.Quote) error
	LatestBySymbol(ctx context.Context, symbol string) (*domain.Quote, error)
	ListBySymbol(ctx context.Context, symbol string, limit, offset int) ([]*domain.Quote, error)
	LatestPerSymbol(ctx context.Context, n int) ([]*domain.Quote, error)
}
