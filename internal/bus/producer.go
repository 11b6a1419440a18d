// Package bus wires the jackpot engine to the bet-event message bus: a
// Producer publishes BetEvents keyed by jackpotId, and a Consumer ingests
// them into the contribution pipeline.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/evetabi/jackpot/internal/config"
	"github.com/evetabi/jackpot/internal/domain"
	"github.com/segmentio/kafka-go"
)

// Producer publishes BetEvents to the bus, keyed by jackpotId so the
// partitioner preserves per-jackpot FIFO ordering.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a Producer for cfg's configured topic and brokers.
func NewProducer(cfg config.BusConfig) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish writes event to the bus. The call returns once the broker has
// acknowledged the write; it does not wait for the contribution service to
// ingest it — acceptance does not imply persistence.
func (p *Producer) Publish(ctx context.Context, event *domain.BetEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("bus.Publish: marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.JackpotID, 10)),
		Value: value,
		Time:  time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("bus.Publish: write message: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
