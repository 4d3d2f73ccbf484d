package ports

import (
	"context"

	"github.com/Gunvolt24/quotes/internal/domain"
)

// QuoteCache — кэш последней котировки по символу.
// Требования к реализации: потокобезопасность; доступ по ключу не хуже O(1); возврат копий сущности.
type QuoteCache interface {
	// Get — последняя котировка символа; (quote, true) при попадании, (nil, false) при промахе/истечении.
	Get(ctx context.Context, symbol string) (*domain.Quote, bool)

	// Set — сохранить/заменить котировку символа.
	Set(ctx context.Context, quote *domain.Quote) error

	// WarmUp — массовая загрузка кэша (например, при старте).
	WarmUp(ctx context.Context, quotes []*domain.Quote) error
}
