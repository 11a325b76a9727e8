package attempt

import (
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
)

// Outcome is how a check-in/check-out attempt was resolved.
type Outcome string

const (
	OutcomeSubmitted Outcome = "submitted"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeDismissed Outcome = "dismissed"
	OutcomeBlocked   Outcome = "blocked"
)

func (o Outcome) Valid() bool {
	switch o {
	case OutcomeSubmitted, OutcomeFailed, OutcomeCancelled, OutcomeDismissed, OutcomeBlocked:
		return true
	}
	return false
}

// Attempt is one journal entry. Verdict is nil when the attempt never reached
// the pre-check or the pre-check itself failed.
type Attempt struct {
	ID             uuid.UUID                `json:"id"`
	UserID         string                   `json:"userId"`
	Action         attendance.Action        `json:"action"`
	Verdict        *attendance.FraudVerdict `json:"verdict,omitempty"`
	PrecheckFailed bool                     `json:"precheckFailed"`
	Reason         *string                  `json:"reason,omitempty"`
	Outcome        Outcome                  `json:"outcome"`
	ErrorMessage   string                   `json:"errorMessage,omitempty"`
	StartedAt      time.Time                `json:"startedAt"`
	ResolvedAt     time.Time                `json:"resolvedAt"`
}

// New stamps a fresh attempt with a time-ordered id.
func New(userID string, action attendance.Action, startedAt time.Time) (*Attempt, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &Attempt{
		ID:        id,
		UserID:    userID,
		Action:    action,
		StartedAt: startedAt,
	}, nil
}

func (a *Attempt) Flagged() bool {
	return a.Verdict != nil && a.Verdict.Flagged()
}
