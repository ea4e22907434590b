package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPublisherPersistsBufferedEvents(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, discardLogger(), 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.NoError(t, p.Emit(ctx, Event{Kind: KindCycleStarted}))
	require.NoError(t, p.Emit(ctx, Event{Kind: KindObservationRecorded}))

	require.Eventually(t, func() bool {
		events, err := store.ListRecent(context.Background(), 10)
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestPublisherFillsIDAndTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, discardLogger(), 8)

	require.NoError(t, p.Emit(context.Background(), Event{Kind: KindCycleClosed}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Run drains the buffer even when the context is already cancelled.
	_ = p.Run(ctx)

	events, err := store.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotZero(t, events[0].ID)
	assert.False(t, events[0].At.IsZero())
}

func TestPublisherDropsWhenBufferFull(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, discardLogger(), 1)

	// No worker running: the second emit cannot be enqueued and is dropped
	// rather than blocking.
	require.NoError(t, p.Emit(context.Background(), Event{Kind: KindCycleStarted}))
	require.NoError(t, p.Emit(context.Background(), Event{Kind: KindCycleStarted}))
}
