package workflow

import (
	"github.com/cmlabs-hris/attendance-console/internal/dialog"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
)

type Phase string

const (
	PhaseIdle                  Phase = "idle"
	PhaseConfirming            Phase = "confirming"
	PhasePrechecking           Phase = "prechecking"
	PhaseAwaitingJustification Phase = "awaiting_justification"
	PhaseSubmitting            Phase = "submitting"
)

// State is one of Idle, Confirming, Prechecking, AwaitingJustification or
// Submitting. No other implementations exist.
type State interface {
	Phase() Phase
	isState()
}

type Idle struct{}

// Confirming means the generic "perform X now?" dialog is open.
type Confirming struct {
	Action attendance.Action
	Dialog dialog.Confirm
}

type Prechecking struct {
	Action attendance.Action
}

// AwaitingJustification blocks the attempt until a reason is supplied or the
// dialog is cancelled.
type AwaitingJustification struct {
	Action  attendance.Action
	Verdict attendance.FraudVerdict
	dialog  *dialog.Justification
}

// Dialog renders the justification dialog.
func (s AwaitingJustification) Dialog() dialog.View {
	return s.dialog.View()
}

// Submitting carries the reason attached to the submit call, nil when none was collected.
type Submitting struct {
	Action attendance.Action
	Reason *string
}

func (Idle) Phase() Phase                  { return PhaseIdle }
func (Confirming) Phase() Phase            { return PhaseConfirming }
func (Prechecking) Phase() Phase           { return PhasePrechecking }
func (AwaitingJustification) Phase() Phase { return PhaseAwaitingJustification }
func (Submitting) Phase() Phase            { return PhaseSubmitting }

func (Idle) isState()                  {}
func (Confirming) isState()            {}
func (Prechecking) isState()           {}
func (AwaitingJustification) isState() {}
func (Submitting) isState()            {}

// actionOf returns the action the state is working on, if any.
func actionOf(s State) (attendance.Action, bool) {
	switch st := s.(type) {
	case Confirming:
		return st.Action, true
	case Prechecking:
		return st.Action, true
	case AwaitingJustification:
		return st.Action, true
	case Submitting:
		return st.Action, true
	}
	return "", false
}

// detach copies s so that callers outside the lock never share the live dialog.
func detach(s State) State {
	if st, ok := s.(AwaitingJustification); ok {
		st.dialog = st.dialog.Clone()
		return st
	}
	if st, ok := s.(Submitting); ok && st.Reason != nil {
		reason := *st.Reason
		st.Reason = &reason
		return st
	}
	return s
}
