package ports

import (
	"context"

	"github.com/Gunvolt24/quotes/internal/domain"
)

// QuotePublisher — отправка котировок в брокер.
type QuotePublisher interface {
	Publish(ctx context.Context, quotes ...domain.Quote) error
}
