package domain

import "time"

// Quote — котировка инструмента (bid/ask) в момент Timestamp.
// Общая модель для продюсера и консьюмера: JSON-имена полей: контракт топика.
type Quote struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Timestamp time.Time `json:"timestamp"`
}

// Mid — середина спреда.
func (q Quote) Mid() float64 { return (q.Bid + q.Ask) / 2 }

// Spread — ask - bid.
func (q Quote) Spread() float64 { return q.Ask - q.Bid }

// PartitionKey — ключ сообщения Kafka: все котировки символа попадают в одну партицию.
func (q Quote) PartitionKey() []byte { return []byte(q.Symbol) }
