package ports

import "context"

// MessageConsumer — фоновый читатель топика; Run блокирует до отмены контекста.
type MessageConsumer interface {
	Run(ctx context.Context) error
	Close() error
}
