package domain

import "github.com/Gunvolt24/quotes/pkg/serde"

// QuoteDeserializer — JSON-десериализатор, привязанный к Quote.
type QuoteDeserializer = serde.JSONDeserializer[Quote]

// NewQuoteDeserializer — десериализатор котировок для консьюмера Kafka.
func NewQuoteDeserializer(opts ...serde.JSONOption) *QuoteDeserializer {
	return serde.NewJSONDeserializer[Quote](opts...)
}

// NewQuoteSerializer — парный сериализатор для продюсера.
func NewQuoteSerializer() *serde.JSONSerializer[Quote] {
	return serde.NewJSONSerializer[Quote]()
}
