package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "ponto/pkg/domain"
	"ponto/pkg/requestcontext"
)

type failingSink struct{ calls int }

func (s *failingSink) Forward(context.Context, Event) error {
	s.calls++
	return errors.New("broker down")
}

func TestPublisherEmit(t *testing.T) {
	staffID := id.StaffID(uuid.New())

	t.Run("fills timestamp and request id from context", func(t *testing.T) {
		store := NewInMemoryStore()
		pub := NewPublisher(store)

		fixed := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(context.Background(), fixed)
		ctx = requestcontext.WithRequestID(ctx, "req-1")

		require.NoError(t, pub.Emit(ctx, Event{StaffID: staffID, Action: ActionCheckinCommitted}))

		events, err := store.ListByStaff(context.Background(), staffID.String())
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, fixed, events[0].Timestamp)
		assert.Equal(t, "req-1", events[0].RequestID)
	})

	t.Run("sink failure does not fail the emit", func(t *testing.T) {
		store := NewInMemoryStore()
		sink := &failingSink{}
		pub := NewPublisher(store, WithSink(sink))

		err := pub.Emit(context.Background(), Event{StaffID: staffID, Action: ActionProofOrphaned})
		require.NoError(t, err)
		assert.Equal(t, 1, sink.calls)

		events, err := store.ListByStaff(context.Background(), staffID.String())
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("events accumulate append-only per staff", func(t *testing.T) {
		store := NewInMemoryStore()
		pub := NewPublisher(store)
		ctx := context.Background()

		for range 3 {
			require.NoError(t, pub.Emit(ctx, Event{StaffID: staffID, Action: ActionCheckinOutsideRadius}))
		}

		events, err := pub.List(ctx, staffID.String())
		require.NoError(t, err)
		assert.Len(t, events, 3)
	})
}
