package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Gunvolt24/quotes/config"
	"github.com/Gunvolt24/quotes/internal/domain"
	"github.com/Gunvolt24/quotes/internal/kafka"
	"github.com/Gunvolt24/quotes/internal/ports"
	"github.com/Gunvolt24/quotes/pkg/logger"
)

// walk — случайное блуждание mid-цены одного символа.
type walk struct {
	mid    float64
	spread float64
}

func (w *walk) next(rnd *rand.Rand, symbol string, now time.Time) domain.Quote {
	// шаг до ±0.05% от текущей цены
	w.mid *= 1 + (rnd.Float64()-0.5)*0.001
	half := w.spread / 2
	return domain.Quote{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Bid:       w.mid - half,
		Ask:       w.mid + half,
		Timestamp: now.UTC(),
	}
}

// generator — по одному блужданию на символ.
type generator struct {
	rnd     *rand.Rand
	symbols []string
	walks   map[string]*walk
}

func newGenerator(symbols []string, seed int64) *generator {
	g := &generator{
		rnd:     rand.New(rand.NewSource(seed)),
		symbols: symbols,
		walks:   make(map[string]*walk, len(symbols)),
	}
	for _, s := range symbols {
		g.walks[s] = &walk{mid: 1 + g.rnd.Float64(), spread: 0.0002}
	}
	return g
}

func (g *generator) batch(now time.Time) []domain.Quote {
	out := make([]domain.Quote, 0, len(g.symbols))
	for _, s := range g.symbols {
		out = append(out, g.walks[s].next(g.rnd, s, now))
	}
	return out
}

// produce публикует пачки раз в interval; count == 0: до отмены контекста.
// Пауза идёт только между пачками. Возвращает число отправленных пачек.
func produce(
	ctx context.Context,
	pub ports.QuotePublisher,
	log ports.Logger,
	gen *generator,
	interval time.Duration,
	count int,
) int {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	for count == 0 || sent < count {
		if sent > 0 {
			select {
			case <-ctx.Done():
				return sent
			case <-ticker.C:
			}
		}
		if err := pub.Publish(ctx, gen.batch(time.Now())...); err != nil {
			log.Warnf(ctx, "publish batch failed: %v", err)
		}
		sent++
	}
	return sent
}

// Генератор котировок: пишет случайные котировки по символам в топик из конфигурации.
func main() {
	symbolsStr := flag.String("symbols", "EUR/USD,GBP/USD,USD/JPY", "comma-separated symbols")
	interval := flag.Duration("interval", time.Second, "pause between batches")
	count := flag.Int("count", 0, "number of batches (0 means until interrupted)")
	flag.Parse()
	if *interval <= 0 {
		fmt.Fprintln(os.Stderr, "-interval must be positive")
		os.Exit(2)
	}

	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logg, closeLog, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	producer := kafka.NewProducer(&kafka.ProducerConfig{
		Brokers:                cfg.Kafka.Brokers,
		Topic:                  cfg.Kafka.Topic,
		RequiredAcks:           cfg.Kafka.RequiredAcks,
		BatchTimeout:           cfg.Kafka.BatchTimeout,
		WriteTimeout:           cfg.Kafka.WriteTimeout,
		AllowAutoTopicCreation: cfg.Kafka.AutoCreateTopic,
	}, domain.NewQuoteSerializer(), kafka.QuoteKey)
	defer func() {
		if err := producer.Close(); err != nil {
			logg.Warnf(ctx, "producer close: %v", err)
		}
	}()

	var symbols []string
	for _, s := range strings.Split(*symbolsStr, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		logg.Errorf(ctx, "no symbols given")
		return
	}

	logg.Infof(ctx, "producing quotes topic=%s symbols=%v interval=%s", cfg.Kafka.Topic, symbols, *interval)

	sent := produce(ctx, producer, logg, newGenerator(symbols, time.Now().UnixNano()), *interval, *count)
	logg.Infof(ctx, "done: %d batches", sent)
}
