// Package feed publishes executed trades to a kafka topic for
// downstream consumers (the account/position collaborator, market data
// fan-out). Delivery is asynchronous and at-least-once: a publish never
// blocks the matching path, and consumers de-duplicate by trade
// sequence.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/soletrade/venue/internal/domain"
)

// TradeFeed wraps an async kafka writer. Messages are keyed by symbol
// so one instrument's fills stay ordered within a partition.
type TradeFeed struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// New creates a feed publishing to the given brokers and topic.
func New(brokers []string, topic string, logger *slog.Logger) *TradeFeed {
	f := &TradeFeed{logger: logger}
	f.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		BatchTimeout: 10 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				f.logger.Error("trade feed delivery failed",
					slog.Int("messages", len(messages)),
					slog.String("error", err.Error()))
			}
		},
	}
	return f
}

// Publish enqueues one event for delivery. With an async writer the
// call returns as soon as the message is buffered.
func (f *TradeFeed) Publish(ctx context.Context, ev domain.Event) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.Symbol),
		Value: value,
	})
}

// Close flushes buffered messages and shuts the writer down.
func (f *TradeFeed) Close() error {
	return f.writer.Close()
}
