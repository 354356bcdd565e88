package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Type names a kind of domain event.
type Type string

// Domain event types
const (
	HabitStarted            Type = "habit.started"
	HabitStopped            Type = "habit.stopped"
	HabitCompleted          Type = "habit.completed"
	BadgeAwarded            Type = "badge.awarded"
	OnboardingSubmitted     Type = "onboarding.submitted"
	RewardRedeemed          Type = "reward.redeemed"
	RewardClaimed           Type = "reward.claimed"
	LedgerInvariantViolated Type = "ledger.invariant_violated"
)

// Event is an immutable record of something that happened to a user's state.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	Type   Type      `json:"type"`
	UserID uuid.UUID `json:"user_id"`

	// Payload contains the event-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an event of the given type for userID with payload
// serialized as JSON.
func NewEvent(eventType Type, userID uuid.UUID, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Handler processes emitted events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Emitter publishes events to registered handlers.
type Emitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *Event)
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements Emitter.
func (NopEmitter) EmitEvent(context.Context, *Event) {}
