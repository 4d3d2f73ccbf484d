package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/ports"
)

// Проверка, что QuoteService удовлетворяет интерфейсу HTTP-слоя.
var _ ports.QuoteService = (*QuoteService)(nil)

// ErrPublishDisabled — сервис собран без продюсера.
var ErrPublishDisabled = errors.New("publishing is disabled")

// QuoteService — прикладная логика работы с котировками (без знаний о транспорте).
type QuoteService struct {
	repo      ports.QuoteRepository
	cache     ports.QuoteCache
	publisher ports.QuotePublisher // может быть nil
	log       ports.Logger
	validator ports.QuoteValidator
}

// NewQuoteService — DI-конструктор.
func NewQuoteService(
	repo ports.QuoteRepository,
	cache ports.QuoteCache,
	publisher ports.QuotePublisher,
	log ports.Logger,
	validator ports.QuoteValidator,
) *QuoteService {
	return &QuoteService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
		validator: validator,
	}
}

// HandleQuote — обработка котировки из Kafka:
//  1. доменная валидация (validate.ErrInvalidQuote: консьюмер пропустит сообщение);
//  2. идемпотентный upsert в БД;
//  3. обновление кэша (устаревшую котировку кэш не примет).
func (s *QuoteService) HandleQuote(ctx context.Context, quote domain.Quote) error {
	if err := s.validator.Validate(ctx, &quote); err != nil {
		s.log.Warnf(ctx, "validation failed id=%s err=%v", quote.ID, err)
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := s.repo.Save(ctx, &quote); err != nil {
		s.log.Errorf(ctx, "repo.Save failed id=%s err=%v", quote.ID, err)
		return fmt.Errorf("failed to save quote: %w", err)
	}

	if err := s.cache.Set(ctx, &quote); err != nil {
		s.log.Warnf(ctx, "cache.Set failed symbol=%s err=%v", quote.Symbol, err)
	}

	s.log.Infof(ctx, "quote saved id=%s symbol=%s bid=%g ask=%g", quote.ID, quote.Symbol, quote.Bid, quote.Ask)
	return nil
}

// Latest — последняя котировка символа: сначала из кэша, при промахе — из БД с записью в кэш.
// Возвращает (nil, nil), если по символу ничего нет.
func (s *QuoteService) Latest(ctx context.Context, symbol string) (*domain.Quote, error) {
	if quote, found := s.cache.Get(ctx, symbol); found {
		return quote, nil
	}

	start := time.Now()
	quote, err := s.repo.LatestBySymbol(ctx, symbol)
	if err != nil {
		s.log.Errorf(ctx, "repo.LatestBySymbol failed symbol=%s err=%v", symbol, err)
		return nil, err
	}
	if quote != nil {
		if setErr := s.cache.Set(ctx, quote); setErr != nil {
			s.log.Warnf(ctx, "cache.Set failed symbol=%s err=%v", symbol, setErr)
		}
	}

	s.log.Infof(ctx, "db fetch symbol=%s took=%s", symbol, time.Since(start))
	return quote, nil
}

// History — проксирование в репозиторий (пагинация уже валидирована на верхнем уровне).
func (s *QuoteService) History(ctx context.Context, symbol string, limit, offset int) ([]*domain.Quote, error) {
	return s.repo.ListBySymbol(ctx, symbol, limit, offset)
}

// Publish — дополняет котировку (id, timestamp), валидирует и отправляет в Kafka.
// В БД котировка попадёт через консьюмер, как и любая другая.
func (s *QuoteService) Publish(ctx context.Context, quote domain.Quote) (*domain.Quote, error) {
	if s.publisher == nil {
		return nil, ErrPublishDisabled
	}

	if quote.ID == "" {
		quote.ID = uuid.NewString()
	}
	if quote.Timestamp.IsZero() {
		quote.Timestamp = time.Now().UTC()
	}

	if err := s.validator.Validate(ctx, &quote); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.publisher.Publish(ctx, quote); err != nil {
		s.log.Errorf(ctx, "publish failed id=%s err=%v", quote.ID, err)
		return nil, fmt.Errorf("failed to publish quote: %w", err)
	}

	s.log.Infof(ctx, "quote published id=%s symbol=%s", quote.ID, quote.Symbol)
	return &quote, nil
}

// WarmUpCache — прогрев кэша последними котировками n символов.
// Если n <= 0, прогрев не выполняется (но это не ошибка).
func (s *QuoteService) WarmUpCache(ctx context.Context, n int) error {
	if n <= 0 {
		s.log.Warnf(ctx, "cache warm-up skipped: n <= 0 (n=%d)", n)
		return nil
	}

	start := time.Now()
	list, err := s.repo.LatestPerSymbol(ctx, n)
	if err != nil {
		s.log.Errorf(ctx, "repo.LatestPerSymbol failed n=%d err=%v", n, err)
		return err
	}
	if err := s.cache.WarmUp(ctx, list); err != nil {
		s.log.Warnf(ctx, "cache.WarmUp failed err=%v", err)
	}
	s.log.Infof(ctx, "cache warmed with %d symbols in %s", len(list), time.Since(start))
	return nil
}
