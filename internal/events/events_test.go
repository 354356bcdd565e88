package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	type testPayload struct {
		ChallengeID string `json:"challenge_id"`
		Streak      int    `json:"streak"`
	}

	userID := uuid.New()
	payload := testPayload{ChallengeID: "cycle-to-work", Streak: 3}

	event, err := NewEvent(HabitCompleted, userID, payload)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, HabitCompleted, event.Type)
	assert.Equal(t, userID, event.UserID)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded testPayload
	require.NoError(t, event.UnmarshalPayload(&decoded))
	assert.Equal(t, payload, decoded)

	_, err = NewEvent(HabitCompleted, userID, make(chan int))
	assert.Error(t, err)
}

func TestHandlerFunc(t *testing.T) {
	called := false
	h := HandlerFunc(func(context.Context, *Event) error {
		called = true
		return errors.New("boom")
	})
	err := h.HandleEvent(context.Background(), &Event{})
	assert.True(t, called)
	assert.EqualError(t, err, "boom")
}
