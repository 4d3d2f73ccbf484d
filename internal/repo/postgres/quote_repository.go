package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/ports"
)

// Проверка, что QuoteRepository удовлетворяет интерфейсу QuoteRepository.
var _ ports.QuoteRepository = (*QuoteRepository)(nil)

const quotesTable = "quotes"

var quoteColumns = []string{"id", "symbol", "bid", "ask", "ts"}

// QuoteRepository — история котировок в Postgres (pgxpool + squirrel).
type QuoteRepository struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

// NewQuoteRepository - конструктор QuoteRepository.
func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Save — идемпотентный upsert по id: повторная доставка того же сообщения перезаписывает строку.
func (r *QuoteRepository) Save(ctx context.Context, quote *domain.Quote) error {
	if quote == nil || quote.ID == "" {
		return errors.New("quote is empty or id is required")
	}

	query, args, err := r.psql.
		Insert(quotesTable).
		Columns(quoteColumns...).
		Values(quote.ID, quote.Symbol, quote.Bid, quote.Ask, quote.Timestamp).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			bid = EXCLUDED.bid,
			ask = EXCLUDED.ask,
			ts = EXCLUDED.ts`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build sql: %w", err)
	}

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert quote: %w", err)
	}
	return nil
}

// LatestBySymbol — самая свежая котировка символа. Если не нашли, возвращает (nil, nil).
func (r *QuoteRepository) LatestBySymbol(ctx context.Context, symbol string) (*domain.Quote, error) {
	query, args, err := r.psql.
		Select(quoteColumns...).
		From(quotesTable).
		Where(sq.Eq{"symbol": symbol}).
		OrderBy("ts DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql: %w", err)
	}

	quote, err := scanQuote(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select latest quote: %w", err)
	}
	return quote, nil
}

// ListBySymbol — история символа, от новых к старым.
func (r *QuoteRepository) ListBySymbol(ctx context.Context, symbol string, limit, offset int) ([]*domain.Quote, error) {
	qb := r.psql.
		Select(quoteColumns...).
		From(quotesTable).
		Where(sq.Eq{"symbol": symbol}).
		OrderBy("ts DESC", "id DESC")
	if limit > 0 {
		qb = qb.Limit(uint64(limit))
	}
	if offset > 0 {
		qb = qb.Offset(uint64(offset))
	}
	return r.query(ctx, qb)
}

// LatestPerSymbol — последняя котировка каждого символа; не больше n символов,
// самые свежие первыми. Используется для прогрева кэша.
func (r *QuoteRepository) LatestPerSymbol(ctx context.Context, n int) ([]*domain.Quote, error) {
	if n <= 0 {
		return nil, nil
	}

	latest := r.psql.
		Select(quoteColumns...).
		Options("DISTINCT ON (symbol)").
		From(quotesTable).
		OrderBy("symbol", "ts DESC", "id DESC")

	qb := r.psql.
		Select(quoteColumns...).
		FromSelect(latest, "latest").
		OrderBy("ts DESC").
		Limit(uint64(n))
	return r.query(ctx, qb)
}

func (r *QuoteRepository) query(ctx context.Context, qb sq.SelectBuilder) ([]*domain.Quote, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*domain.Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, quote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return quotes, nil
}

func scanQuote(row pgx.Row) (*domain.Quote, error) {
	var q domain.Quote
	if err := row.Scan(&q.ID, &q.Symbol, &q.Bid, &q.Ask, &q.Timestamp); err != nil {
		return nil, err
	}
	q.Timestamp = q.Timestamp.UTC()
	return &q, nil
}
