package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupDispatcher(t *testing.T) (*OutboxDispatcher, *mocks.MockOutboxRepository, *mocks.MockEventPublisher, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	outboxRepo := mocks.NewMockOutboxRepository(ctrl)
	publisher := mocks.NewMockEventPublisher(ctrl)
	d := NewOutboxDispatcher(outboxRepo, publisher, metrics.NewUnregistered(), time.Second, 100, zerolog.Nop())
	return d, outboxRepo, publisher, ctrl
}

func outboxEvent(kind string) domain.OutboxEvent {
	return domain.OutboxEvent{
		ID:          uuid.New(),
		Kind:        kind,
		AggregateID: uuid.New(),
		Payload:     []byte(`{}`),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestOutboxDispatcher_DispatchOnce_PublishesAndMarks(t *testing.T) {
	d, outboxRepo, publisher, ctrl := setupDispatcher(t)
	defer ctrl.Finish()

	ctx := context.Background()
	e1 := outboxEvent(domain.EventWalletTopUp)
	e2 := outboxEvent(domain.EventIntentReserved)

	outboxRepo.EXPECT().ListUnpublished(ctx, 100).Return([]domain.OutboxEvent{e1, e2}, nil)
	publisher.EXPECT().Publish(ctx, gomock.Any()).Times(2).Return(nil)
	outboxRepo.EXPECT().MarkPublished(ctx, []uuid.UUID{e1.ID, e2.ID}, gomock.Any()).Return(nil)

	require.NoError(t, d.DispatchOnce(ctx))
}

func TestOutboxDispatcher_DispatchOnce_FailedEventStaysUnpublished(t *testing.T) {
	d, outboxRepo, publisher, ctrl := setupDispatcher(t)
	defer ctrl.Finish()

	ctx := context.Background()
	e1 := outboxEvent(domain.EventWalletTopUp)
	e2 := outboxEvent(domain.EventIntentCaptured)

	outboxRepo.EXPECT().ListUnpublished(ctx, 100).Return([]domain.OutboxEvent{e1, e2}, nil)
	publisher.EXPECT().Publish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, event *domain.OutboxEvent) error {
			if event.ID == e1.ID {
				return errors.New("broker unavailable")
			}
			return nil
		}).Times(2)
	// Only the successfully published event is marked.
	outboxRepo.EXPECT().MarkPublished(ctx, []uuid.UUID{e2.ID}, gomock.Any()).Return(nil)

	require.NoError(t, d.DispatchOnce(ctx))
}

func TestOutboxDispatcher_DispatchOnce_EmptyBatch(t *testing.T) {
	d, outboxRepo, _, ctrl := setupDispatcher(t)
	defer ctrl.Finish()

	ctx := context.Background()
	outboxRepo.EXPECT().ListUnpublished(ctx, 100).Return(nil, nil)

	require.NoError(t, d.DispatchOnce(ctx))
}

func TestOutboxDispatcher_DispatchOnce_AllFailed(t *testing.T) {
	d, outboxRepo, publisher, ctrl := setupDispatcher(t)
	defer ctrl.Finish()

	ctx := context.Background()
	e := outboxEvent(domain.EventPaymentRefund)

	outboxRepo.EXPECT().ListUnpublished(ctx, 100).Return([]domain.OutboxEvent{e}, nil)
	publisher.EXPECT().Publish(ctx, gomock.Any()).Return(errors.New("broker unavailable"))
	// Nothing to mark.

	require.NoError(t, d.DispatchOnce(ctx))
}

func TestOutboxDispatcher_Run_StopsOnContextCancel(t *testing.T) {
	d, outboxRepo, publisher, ctrl := setupDispatcher(t)
	defer ctrl.Finish()

	d.interval = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	outboxRepo.EXPECT().ListUnpublished(gomock.Any(), 100).Return(nil, nil).AnyTimes()
	_ = publisher

	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after context cancellation")
	}
	assert.Error(t, ctx.Err())
}
