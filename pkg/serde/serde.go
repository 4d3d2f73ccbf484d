// Пакет serde — обобщённые сериализаторы/десериализаторы сообщений для Kafka.
// Конкретный тип записи задаётся параметром типа в месте использования,
// например serde.NewJSONDeserializer[domain.Quote]().
package serde

import "errors"

var (
	// ErrDecode — байты не являются корректной записью целевого типа.
	ErrDecode = errors.New("serde: decode failed")
	// ErrEncode — запись не удалось закодировать.
	ErrEncode = errors.New("serde: encode failed")
	// ErrEmptyPayload — пустое значение сообщения (tombstone). Всегда вместе с ErrDecode.
	ErrEmptyPayload = errors.New("serde: empty payload")
)

// Serializer — запись -> байты значения сообщения.
type Serializer[T any] interface {
	Serialize(topic string, v T) ([]byte, error)
}

// Deserializer — байты значения сообщения -> запись.
// topic нужен только для диагностики (попадает в текст ошибки).
type Deserializer[T any] interface {
	Deserialize(topic string, data []byte) (T, error)
}

// Serde — пара сериализатор/десериализатор для одного типа.
type Serde[T any] struct {
	Serializer   Serializer[T]
	Deserializer Deserializer[T]
}
