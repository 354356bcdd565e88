package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/ecorewards-api/internal/events"
	"github.com/phrazzld/ecorewards-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(t *testing.T, typ events.Type) *events.Event {
	t.Helper()
	e, err := events.NewEvent(typ, uuid.New(), map[string]string{"challenge_id": "cycle-to-work"})
	require.NoError(t, err)
	return e
}

func TestInMemoryEventEmitter(t *testing.T) {
	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := events.NewInMemoryEventEmitter(nil)
		assert.NotPanics(t, func() {
			emitter.EmitEvent(context.Background(), newEvent(t, events.HabitStarted))
			emitter.EmitEvent(context.Background(), nil)
		})
	})

	t.Run("delivers to every handler in order", func(t *testing.T) {
		emitter := events.NewInMemoryEventEmitter(nil)
		var order []int
		emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.Event) error {
			order = append(order, 1)
			return nil
		}))
		emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.Event) error {
			order = append(order, 2)
			return nil
		}))

		emitter.EmitEvent(context.Background(), newEvent(t, events.HabitStarted))
		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("failing and panicking handlers are logged and skipped", func(t *testing.T) {
		log, logs := testutils.NewTestLogger()
		emitter := events.NewInMemoryEventEmitter(log)

		var delivered int
		emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.Event) error {
			return errors.New("handler error")
		}))
		emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.Event) error {
			panic("handler exploded")
		}))
		emitter.RegisterHandler(events.HandlerFunc(func(context.Context, *events.Event) error {
			delivered++
			return nil
		}))

		emitter.EmitEvent(context.Background(), newEvent(t, events.RewardRedeemed))
		assert.Equal(t, 1, delivered)

		failures := logs.Find("handler failed to process event")
		require.Len(t, failures, 2)
		assert.Equal(t, "handler error", failures[0]["error"])
		assert.Contains(t, failures[1]["error"], "handler exploded")
		assert.Equal(t, "in_memory_event_emitter", failures[0]["component"])
	})
}

func TestAuditLogHandler(t *testing.T) {
	log, logs := testutils.NewTestLogger()
	h := events.NewAuditLogHandler(log)
	event := newEvent(t, events.BadgeAwarded)

	require.NoError(t, h.HandleEvent(context.Background(), event))

	entries := logs.Find("domain event")
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "badge.awarded", entries[0]["event_type"])
	assert.Equal(t, event.UserID.String(), entries[0]["user_id"])
}

func TestAlertHandler(t *testing.T) {
	log, logs := testutils.NewTestLogger()
	h := events.NewAlertHandler(log)

	require.NoError(t, h.HandleEvent(context.Background(), newEvent(t, events.HabitCompleted)))
	assert.Empty(t, logs.Entries())

	require.NoError(t, h.HandleEvent(context.Background(), newEvent(t, events.LedgerInvariantViolated)))
	entries := logs.Find("ledger invariant violated")
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
	assert.Equal(t, true, entries[0]["alert"])
}
