package service

import (
	"context"
	"time"

	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OutboxDispatcher drains the transactional outbox into the message broker.
// Delivery is at-least-once: an event is marked published only after the
// broker accepted it, so a crash in between re-delivers.
type OutboxDispatcher struct {
	outboxRepo ports.OutboxRepository
	publisher  ports.EventPublisher
	metrics    *metrics.Metrics
	interval   time.Duration
	batchSize  int
	log        zerolog.Logger
}

// NewOutboxDispatcher creates a new OutboxDispatcher.
func NewOutboxDispatcher(
	outboxRepo ports.OutboxRepository,
	publisher ports.EventPublisher,
	m *metrics.Metrics,
	interval time.Duration,
	batchSize int,
	log zerolog.Logger,
) *OutboxDispatcher {
	return &OutboxDispatcher{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		metrics:    m,
		interval:   interval,
		batchSize:  batchSize,
		log:        log,
	}
}

// Run polls the outbox until the context is cancelled. Intended to run in its
// own goroutine.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.log.Info().Dur("interval", d.interval).Int("batch_size", d.batchSize).Msg("outbox dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("outbox dispatcher stopped")
			return
		case <-ticker.C:
			if err := d.DispatchOnce(ctx); err != nil {
				d.log.Error().Err(err).Msg("outbox dispatch pass failed")
			}
		}
	}
}

// DispatchOnce publishes one batch of unpublished events. Events that fail to
// publish stay unpublished and are retried on the next pass; successfully
// published events are marked in one update.
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) error {
	events, err := d.outboxRepo.ListUnpublished(ctx, d.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(events))
	for i := range events {
		event := &events[i]
		if err := d.publisher.Publish(ctx, event); err != nil {
			d.metrics.OutboxFailures.Inc()
			d.log.Warn().Err(err).
				Str("event_id", event.ID.String()).
				Str("event_kind", event.Kind).
				Msg("event publish failed, will retry")
			continue
		}
		published = append(published, event.ID)
	}

	if len(published) == 0 {
		return nil
	}
	if err := d.outboxRepo.MarkPublished(ctx, published, time.Now().UTC()); err != nil {
		// The events will be re-published; consumers must tolerate duplicates.
		return err
	}
	d.metrics.OutboxPublished.Add(float64(len(published)))
	return nil
}
