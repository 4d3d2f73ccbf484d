package serde

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

var nullLiteral = []byte("null")

// JSONOption — настройка JSONDeserializer.
type JSONOption func(*jsonOptions)

type jsonOptions struct {
	disallowUnknownFields bool
}

// WithDisallowUnknownFields — отклонять поля, которых нет в целевом типе.
func WithDisallowUnknownFields() JSONOption {
	return func(o *jsonOptions) { o.disallowUnknownFields = true }
}

// JSONSerializer кодирует запись в компактный JSON.
type JSONSerializer[T any] struct{}

// NewJSONSerializer — конструктор JSONSerializer.
func NewJSONSerializer[T any]() *JSONSerializer[T] { return &JSONSerializer[T]{} }

// Serialize — JSON-представление v.
func (s *JSONSerializer[T]) Serialize(topic string, v T) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: topic=%s: %w", ErrEncode, topic, err)
	}
	return raw, nil
}

// JSONDeserializer декодирует ровно одно JSON-значение в T.
// Состояния не хранит: один экземпляр можно использовать из любого числа горутин.
type JSONDeserializer[T any] struct {
	opts jsonOptions
}

// NewJSONDeserializer — конструктор JSONDeserializer.
func NewJSONDeserializer[T any](opts ...JSONOption) *JSONDeserializer[T] {
	d := &JSONDeserializer[T]{}
	for _, opt := range opts {
		opt(&d.opts)
	}
	return d
}

// Deserialize — байты -> T. При любой ошибке возвращает нулевое значение T
// и ошибку, оборачивающую ErrDecode; частично заполненная запись наружу не отдаётся.
func (d *JSONDeserializer[T]) Deserialize(topic string, data []byte) (T, error) {
	var zero T

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return zero, fmt.Errorf("%w: topic=%s: %w", ErrDecode, topic, ErrEmptyPayload)
	}
	if bytes.Equal(trimmed, nullLiteral) {
		return zero, fmt.Errorf("%w: topic=%s: null value", ErrDecode, topic)
	}

	var record T
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	if d.opts.disallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&record); err != nil {
		return zero, fmt.Errorf("%w: topic=%s: %w", ErrDecode, topic, err)
	}

	// После значения ничего быть не должно.
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return zero, fmt.Errorf("%w: topic=%s: trailing data", ErrDecode, topic)
	}

	return record, nil
}

// JSON — пара JSON-сериализатор/десериализатор для T.
func JSON[T any](opts ...JSONOption) Serde[T] {
	return Serde[T]{
		Serializer:   NewJSONSerializer[T](),
		Deserializer: NewJSONDeserializer[T](opts...),
	}
}
