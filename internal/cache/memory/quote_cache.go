package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/ports"
	"github.com/Gunvolt24/quotes/pkg/metrics"
)

var _ ports.QuoteCache = (*LRUCacheTTL)(nil)

type entry struct {
	symbol    string
	quote     domain.Quote
	expiresAt time.Time
}

// LRUCacheTTL — последняя котировка по символу: LRU-вытеснение по capacity
// и скользящий TTL (продлевается при чтении). ttl <= 0: без истечения.
type LRUCacheTTL struct {
	capacity int
	ttl      time.Duration

	ll    *list.List
	index map[string]*list.Element

	mu  sync.Mutex
	now func() time.Time
}

func NewLRUCacheTTL(capacity int, ttl time.Duration) *LRUCacheTTL {
	if capacity <= 0 {
		capacity = 1
	}
	return &LRUCacheTTL{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
		now:      time.Now,
	}
}

func (c *LRUCacheTTL) Get(_ context.Context, symbol string) (*domain.Quote, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	elem, ok := c.index[symbol]
	if !ok {
		metrics.CacheOps.WithLabelValues("miss").Inc()
		return nil, false
	}
	ent := elem.Value.(*entry)
	if c.isExpired(ent, now) {
		metrics.CacheOps.WithLabelValues("expired").Inc()
		c.removeElement(elem)
		return nil, false
	}

	c.ll.MoveToFront(elem)
	ent.expiresAt = c.expiryFrom(now)

	metrics.CacheOps.WithLabelValues("hit").Inc()
	q := ent.quote
	return &q, true
}

// Set — котировка заменяет закэшированную, только если она не старше её.
// Устаревшая запись (out-of-order доставка) молча отбрасывается.
func (c *LRUCacheTTL) Set(_ context.Context, quote *domain.Quote) error {
	if quote == nil || quote.Symbol == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if elem, ok := c.index[quote.Symbol]; ok {
		ent := elem.Value.(*entry)
		if !c.isExpired(ent, now) && quote.Timestamp.Before(ent.quote.Timestamp) {
			metrics.CacheOps.WithLabelValues("stale").Inc()
			return nil
		}
		ent.quote = *quote
		ent.expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return nil
	}

	c.pruneExpiredFromBack(now)

	c.index[quote.Symbol] = c.ll.PushFront(&entry{
		symbol:    quote.Symbol,
		quote:     *quote,
		expiresAt: c.expiryFrom(now),
	})
	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
	metrics.CacheSize.Set(float64(c.ll.Len()))
	return nil
}

func (c *LRUCacheTTL) WarmUp(ctx context.Context, quotes []*domain.Quote) error {
	for _, q := range quotes {
		if err := c.Set(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Len — число символов в кэше (включая ещё не вычищенные истёкшие).
func (c *LRUCacheTTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *LRUCacheTTL) evictLRU() {
	if back := c.ll.Back(); back != nil {
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues("evicted").Inc()
	}
}

func (c *LRUCacheTTL) removeElement(elem *list.Element) {
	delete(c.index, elem.Value.(*entry).symbol)
	c.ll.Remove(elem)
	metrics.CacheSize.Set(float64(c.ll.Len()))
}

func (c *LRUCacheTTL) isExpired(ent *entry, now time.Time) bool {
	return c.ttl > 0 && now.After(ent.expiresAt)
}

func (c *LRUCacheTTL) expiryFrom(now time.Time) time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(c.ttl)
}

// pruneExpiredFromBack — снимает истёкшие записи с хвоста до первой живой.
func (c *LRUCacheTTL) pruneExpiredFromBack(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for back := c.ll.Back(); back != nil; back = c.ll.Back() {
		if !c.isExpired(back.Value.(*entry), now) {
			return
		}
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues("expired").Inc()
	}
}
