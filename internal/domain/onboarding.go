package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Response is a ternary onboarding answer.
type Response int

// Possible onboarding responses, matching the wire values -1, 0 and 1.
const (
	ResponseNegative    Response = -1
	ResponseSkipped     Response = 0
	ResponseAffirmative Response = 1
)

// Valid reports whether r is one of the three accepted responses.
func (r Response) Valid() bool {
	return r >= ResponseNegative && r <= ResponseAffirmative
}

// Validation errors for AnswerSet
var (
	ErrEmptyAnswerSetID     = errors.New("answer set ID cannot be empty")
	ErrEmptyAnswerSetUserID = errors.New("answer set user ID cannot be empty")
	ErrEmptyQuestionID      = errors.New("question ID cannot be empty")
)

// AnswerSet is one onboarding submission. A new submission creates a new set;
// sets are never patched.
type AnswerSet struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"user_id"`
	Answers     map[string]Response `json:"answers"`
	SubmittedAt time.Time           `json:"submitted_at"`
}

// NewAnswerSet creates a validated answer set for userID.
func NewAnswerSet(userID uuid.UUID, answers map[string]Response, now time.Time) (*AnswerSet, error) {
	copied := make(map[string]Response, len(answers))
	for k, v := range answers {
		copied[k] = v
	}

	set := &AnswerSet{
		ID:          uuid.New(),
		UserID:      userID,
		Answers:     copied,
		SubmittedAt: now.UTC(),
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Validate checks ids and that every response is in range.
func (s *AnswerSet) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptyAnswerSetID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptyAnswerSetUserID
	}
	for qid, r := range s.Answers {
		if qid == "" {
			return ErrEmptyQuestionID
		}
		if !r.Valid() {
			return fmt.Errorf("%w: question %s has value %d", ErrInvalidResponse, qid, r)
		}
	}
	return nil
}

// Affirmative returns the set of question ids answered affirmatively.
// A nil receiver yields an empty set.
func (s *AnswerSet) Affirmative() map[string]struct{} {
	out := make(map[string]struct{})
	if s == nil {
		return out
	}
	for qid, r := range s.Answers {
		if r == ResponseAffirmative {
			out[qid] = struct{}{}
		}
	}
	return out
}
