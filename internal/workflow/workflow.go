package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-console/internal/dialog"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attempt"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
)

// Policy decides what happens when the fraud pre-check cannot be completed.
type Policy string

const (
	// FailOpen submits without asking for a justification.
	FailOpen Policy = "fail-open"
	// FailClosed aborts the attempt and asks the user to retry.
	FailClosed Policy = "fail-closed"
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case FailOpen, FailClosed:
		return Policy(s), nil
	case "":
		return FailOpen, nil
	}
	return "", ErrUnknownPolicy
}

// Outcome is what a step of the workflow led to.
type Outcome string

const (
	OutcomeSubmitted             Outcome = "submitted"
	OutcomeFailed                Outcome = "failed"
	OutcomeAwaitingJustification Outcome = "awaiting_justification"
	OutcomeBlocked               Outcome = "blocked"
)

// Journal receives every resolved attempt. attempt.Repository satisfies it.
type Journal interface {
	Create(ctx context.Context, a *attempt.Attempt) error
}

type Options struct {
	UserID   string
	Policy   Policy
	Notifier Notifier
	Journal  Journal
	Logger   *slog.Logger
	Now      func() time.Time
}

// Workflow guards check-in and check-out behind the fraud pre-check. One
// attempt runs at a time; network calls are made without holding the lock.
type Workflow struct {
	gateway  attendance.Gateway
	notifier Notifier
	journal  Journal
	policy   Policy
	userID   string
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	state     State
	record    *attendance.Record
	busy      bool
	lastError string
	current   *attempt.Attempt
}

func New(gateway attendance.Gateway, opts Options) *Workflow {
	w := &Workflow{
		gateway:  gateway,
		notifier: opts.Notifier,
		journal:  opts.Journal,
		policy:   opts.Policy,
		userID:   opts.UserID,
		logger:   opts.Logger,
		now:      opts.Now,
		state:    Idle{},
	}
	if w.notifier == nil {
		w.notifier = discardNotifier{}
	}
	if w.policy == "" {
		w.policy = FailOpen
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.now == nil {
		w.now = time.Now
	}
	return w
}

// Load replaces the current record with today's record from the backend.
func (w *Workflow) Load(ctx context.Context) error {
	w.mu.Lock()
	if w.busy || w.state.Phase() != PhaseIdle {
		w.mu.Unlock()
		return ErrBusy
	}
	w.busy = true
	w.mu.Unlock()

	record, err := w.gateway.Today(ctx)

	w.mu.Lock()
	w.busy = false
	if err != nil {
		w.lastError = messageOf(err, "Failed to load today's attendance")
		w.mu.Unlock()
		w.logger.Error("failed to load today's attendance", "user_id", w.userID, "error", err)
		return err
	}
	w.record = record
	w.mu.Unlock()
	return nil
}

// Request opens the confirmation dialog for action.
func (w *Workflow) Request(action attendance.Action) error {
	if !action.Valid() {
		return attendance.ErrInvalidAction
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy || w.state.Phase() != PhaseIdle {
		return ErrBusy
	}
	if !w.record.Allows(action) {
		return attendance.ErrActionNotAllowed
	}

	w.state = Confirming{Action: action, Dialog: dialog.ForAction(action)}
	w.lastError = ""

	a, err := attempt.New(w.userID, action, w.now())
	if err != nil {
		w.logger.Warn("attempt will not be journaled", "error", err)
	}
	w.current = a
	return nil
}

// DismissIntent closes the confirmation dialog without doing anything.
func (w *Workflow) DismissIntent(ctx context.Context) error {
	w.mu.Lock()
	if _, ok := w.state.(Confirming); !ok {
		w.mu.Unlock()
		return ErrNoPendingAttempt
	}
	w.state = Idle{}
	a := w.detachAttempt(attempt.OutcomeDismissed, "")
	w.mu.Unlock()

	w.journalAttempt(ctx, a)
	return nil
}

// ConfirmIntent runs the pre-check and either submits right away or waits
// for a justification.
func (w *Workflow) ConfirmIntent(ctx context.Context) (Outcome, error) {
	w.mu.Lock()
	st, ok := w.state.(Confirming)
	if !ok {
		err := w.stepError()
		w.mu.Unlock()
		return "", err
	}
	action := st.Action
	w.state = Prechecking{Action: action}
	w.busy = true
	w.mu.Unlock()

	verdict, err := w.gateway.PreCheck(ctx, action)

	w.mu.Lock()
	if err != nil {
		w.logger.Warn("fraud pre-check failed",
			"user_id", w.userID,
			"action", action,
			"policy", w.policy,
			"error", err,
		)
		if w.current != nil {
			w.current.PrecheckFailed = true
		}

		if w.policy == FailClosed {
			msg := "Could not verify this " + string(action) + ", please try again"
			w.state = Idle{}
			w.busy = false
			w.lastError = msg
			a := w.detachAttempt(attempt.OutcomeBlocked, messageOf(err, msg))
			w.mu.Unlock()

			w.notifier.Notify(Toast{Level: LevelError, Message: msg})
			w.journalAttempt(ctx, a)
			return OutcomeBlocked, nil
		}

		w.state = Submitting{Action: action}
		w.mu.Unlock()
		return w.submit(ctx, action, nil)
	}

	if w.current != nil {
		v := verdict
		w.current.Verdict = &v
	}

	if verdict.Flagged() {
		w.state = AwaitingJustification{
			Action:  action,
			Verdict: verdict,
			dialog:  dialog.NewJustification(action, verdict),
		}
		w.busy = false
		w.mu.Unlock()
		return OutcomeAwaitingJustification, nil
	}

	w.state = Submitting{Action: action}
	w.mu.Unlock()
	return w.submit(ctx, action, nil)
}

// EditJustification forwards typed text to the open justification dialog.
func (w *Workflow) EditJustification(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	st, ok := w.state.(AwaitingJustification)
	if !ok {
		return w.stepError()
	}
	st.dialog.Edit(text)
	return nil
}

// Justify submits the pending action with reason. A blank reason is rejected
// with a validation error and nothing is sent.
func (w *Workflow) Justify(ctx context.Context, reason string) (Outcome, error) {
	w.mu.Lock()
	st, ok := w.state.(AwaitingJustification)
	if !ok {
		err := w.stepError()
		w.mu.Unlock()
		return "", err
	}

	st.dialog.Edit(reason)
	trimmed, err := st.dialog.Submit()
	if err != nil {
		w.mu.Unlock()
		return "", err
	}

	w.state = Submitting{Action: st.Action, Reason: &trimmed}
	w.busy = true
	if w.current != nil {
		r := trimmed
		w.current.Reason = &r
	}
	w.mu.Unlock()

	return w.submit(ctx, st.Action, &trimmed)
}

// CancelJustification abandons a flagged attempt and reloads today's record.
// The previous record is kept when the reload fails.
func (w *Workflow) CancelJustification(ctx context.Context) error {
	w.mu.Lock()
	st, ok := w.state.(AwaitingJustification)
	if !ok {
		err := w.stepError()
		w.mu.Unlock()
		return err
	}
	st.dialog.Cancel()
	w.state = Idle{}
	w.busy = true
	a := w.detachAttempt(attempt.OutcomeCancelled, "")
	w.mu.Unlock()

	w.journalAttempt(ctx, a)

	record, err := w.gateway.Today(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false
	if err != nil {
		w.logger.Warn("failed to reload attendance after cancel", "user_id", w.userID, "error", err)
		return nil
	}
	w.record = record
	return nil
}

func (w *Workflow) submit(ctx context.Context, action attendance.Action, reason *string) (Outcome, error) {
	record, err := w.gateway.Submit(ctx, action, reason)

	w.mu.Lock()
	w.state = Idle{}
	w.busy = false

	if err != nil {
		msg := messageOf(err, failureMessage(action))
		w.lastError = msg
		a := w.detachAttempt(attempt.OutcomeFailed, msg)
		w.mu.Unlock()

		w.logger.Error("attendance submit failed", "user_id", w.userID, "action", action, "error", err)
		w.notifier.Notify(Toast{Level: LevelError, Message: msg})
		w.journalAttempt(ctx, a)
		return OutcomeFailed, nil
	}

	w.record = record
	w.lastError = ""
	a := w.detachAttempt(attempt.OutcomeSubmitted, "")
	w.mu.Unlock()

	w.notifier.Notify(Toast{Level: LevelSuccess, Message: successMessage(action)})
	if record.HasAlert() {
		w.notifier.Notify(Toast{Level: LevelWarning, Message: "Warning: " + record.AlertText()})
	}
	w.journalAttempt(ctx, a)
	return OutcomeSubmitted, nil
}

// Snapshot is a copy of the workflow that is safe to read and render.
type Snapshot struct {
	State       State              `json:"-"`
	Phase       Phase              `json:"phase"`
	Action      attendance.Action  `json:"action,omitempty"`
	Record      *attendance.Record `json:"record"`
	Busy        bool               `json:"busy"`
	CanCheckIn  bool               `json:"canCheckIn"`
	CanCheckOut bool               `json:"canCheckOut"`
	LastError   string             `json:"lastError,omitempty"`
}

func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	idle := !w.busy && w.state.Phase() == PhaseIdle
	action, _ := actionOf(w.state)

	return Snapshot{
		State:       detach(w.state),
		Phase:       w.state.Phase(),
		Action:      action,
		Record:      w.record.Clone(),
		Busy:        w.busy,
		CanCheckIn:  idle && w.record.CanCheckIn(),
		CanCheckOut: idle && w.record.CanCheckOut(),
		LastError:   w.lastError,
	}
}

// stepError explains why a step is not possible in the current state. Callers hold the lock.
func (w *Workflow) stepError() error {
	switch w.state.(type) {
	case Prechecking, Submitting:
		return ErrBusy
	}
	if w.busy {
		return ErrBusy
	}
	return ErrNoPendingAttempt
}

// detachAttempt resolves the running attempt. Callers hold the lock.
func (w *Workflow) detachAttempt(outcome attempt.Outcome, errMsg string) *attempt.Attempt {
	a := w.current
	w.current = nil
	if a == nil {
		return nil
	}
	a.Outcome = outcome
	a.ErrorMessage = errMsg
	a.ResolvedAt = w.now()
	return a
}

func (w *Workflow) journalAttempt(ctx context.Context, a *attempt.Attempt) {
	if a == nil {
		return
	}

	w.logger.Info("attendance attempt resolved",
		"user_id", a.UserID,
		"action", a.Action,
		"outcome", a.Outcome,
		"flagged", a.Flagged(),
		"precheck_failed", a.PrecheckFailed,
	)

	if w.journal == nil {
		return
	}
	if err := w.journal.Create(ctx, a); err != nil {
		w.logger.Warn("failed to journal attendance attempt", "attempt_id", a.ID, "error", err)
	}
}

type userMessager interface {
	UserMessage() string
}

// messageOf prefers the backend's own wording over fallback.
func messageOf(err error, fallback string) string {
	var um userMessager
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return fallback
}

func successMessage(action attendance.Action) string {
	if action == attendance.ActionCheckOut {
		return "Checked out successfully"
	}
	return "Checked in successfully"
}

func failureMessage(action attendance.Action) string {
	if action == attendance.ActionCheckOut {
		return "Check-out failed"
	}
	return "Check-in failed"
}
