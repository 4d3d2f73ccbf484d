package validate

import (
	"context"
	"fmt"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/ports"
	"github.com/Gunvolt24/quotes/pkg/serde"
)

// sourceTopic — имя источника для текста ошибок при офлайн-проверке.
const sourceTopic = "file"

// ValidateQuoteFromJSON — декодирование котировки тем же десериализатором, что и в консьюмере, и валидация.
func ValidateQuoteFromJSON(
	ctx context.Context,
	deserializer serde.Deserializer[domain.Quote],
	validator ports.QuoteValidator,
	raw []byte,
) (*domain.Quote, error) {
	quote, err := deserializer.Deserialize(sourceTopic, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if err := validator.Validate(ctx, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}
