package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/evetabi/jackpot/internal/config"
	"github.com/evetabi/jackpot/internal/domain"
	"github.com/segmentio/kafka-go"
)

// Contributor is the subset of ContributionService the Consumer depends on,
// declared here so this package does not need to import internal/service
// and cause a circular dependency.
type Contributor interface {
	Contribute(ctx context.Context, event *domain.BetEvent) (*domain.Contribution, error)
}

// Consumer reads BetEvents off the bus and feeds them to a Contributor.
// Delivery is at-least-once: redelivery of an already-ingested betId is
// absorbed by the contribution service's own betId idempotency. A Contribute
// failure that domain.IsSurfaced reports is logged and the message committed
// (dropped); any other failure is retried in place until it succeeds or the
// context is cancelled, leaving the message uncommitted in that case.
type Consumer struct {
	reader      *kafka.Reader
	contributor Contributor
	logger      *slog.Logger
}

// NewConsumer creates a Consumer subscribed to cfg's topic under cfg's
// consumer group.
func NewConsumer(cfg config.BusConfig, contributor Contributor, logger *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
	return &Consumer{reader: reader, contributor: contributor, logger: logger}
}

// Run consumes messages until ctx is cancelled. It never returns an error
// for a single bad message — ingestion faults are logged and the loop
// continues rather than killing the process on a recoverable fault.
func (c *Consumer) Run(ctx context.Context) {
	defer c.recoverAndLog()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("bus consumer: shutting down")
			_ = c.reader.Close()
			return
		default:
		}

		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue // loop top will observe ctx.Done() and exit
			}
			c.logger.Error("bus consumer: fetch message", "err", err)
			continue
		}

		err = c.handle(ctx, msg)
		for err != nil && !domain.IsSurfaced(err) && ctx.Err() == nil {
			// A transient fault: committing any later message on this
			// partition would also commit this offset, so retry it in place.
			c.logger.Error("bus consumer: handle message, retrying",
				"partition", msg.Partition, "offset", msg.Offset, "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			err = c.handle(ctx, msg)
		}
		if err != nil {
			if domain.IsSurfaced(err) {
				// Invalid input, a policy/config/integrity fault — redelivery
				// hits the same inputs and fails the same way, so commit and
				// drop rather than wedge the partition retrying forever.
				c.logger.Error("bus consumer: permanent contribute failure, dropping",
					"partition", msg.Partition, "offset", msg.Offset, "err", err)
				if cerr := c.reader.CommitMessages(ctx, msg); cerr != nil {
					c.logger.Error("bus consumer: commit message", "err", cerr)
				}
				continue
			}
			c.logger.Error("bus consumer: handle message",
				"partition", msg.Partition, "offset", msg.Offset, "err", err)
			continue // shutting down: left uncommitted for redelivery
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("bus consumer: commit message", "err", err)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	var event domain.BetEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// A malformed payload can never become valid on redelivery; log and
		// drop it rather than blocking the partition forever.
		c.logger.Error("bus consumer: malformed bet event, dropping", "err", err, "raw", string(msg.Value))
		return nil
	}

	_, err := c.contributor.Contribute(ctx, &event)
	return err
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) recoverAndLog() {
	if r := recover(); r != nil {
		c.logger.Error("PANIC recovered in bus consumer", "panic", r)
	}
}
