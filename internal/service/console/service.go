package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attempt"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/panel"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-console/internal/workflow"
)

const (
	DefaultHistoryLimit = 10
	EventToast          = "toast"
)

type Options struct {
	Gateway      attendance.Gateway
	Journal      attempt.Repository
	Hub          *sse.Hub
	Policy       workflow.Policy
	Location     *time.Location
	HistoryLimit int
	Logger       *slog.Logger
	Now          func() time.Time
}

// StepResult is returned by every workflow step: what happened and the screen
// to render next.
type StepResult struct {
	Outcome workflow.Outcome `json:"outcome,omitempty"`
	View    panel.View       `json:"view"`
}

type session struct {
	flow *workflow.Workflow

	mu       sync.Mutex
	history  []attendance.Record
	loaded   bool
	lastSeen time.Time
}

// Service keeps one attendance workflow per signed-in user. The gateway is
// shared; each request carries its own bearer token in the context.
type Service struct {
	gateway      attendance.Gateway
	journal      attempt.Repository
	hub          *sse.Hub
	policy       workflow.Policy
	loc          *time.Location
	historyLimit int
	logger       *slog.Logger
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(opts Options) *Service {
	s := &Service{
		gateway:      opts.Gateway,
		journal:      opts.Journal,
		hub:          opts.Hub,
		policy:       opts.Policy,
		loc:          opts.Location,
		historyLimit: opts.HistoryLimit,
		logger:       opts.Logger,
		now:          opts.Now,
		sessions:     make(map[string]*session),
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.historyLimit <= 0 {
		s.historyLimit = DefaultHistoryLimit
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) session(userID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		opts := workflow.Options{
			UserID:   userID,
			Policy:   s.policy,
			Notifier: s.notifier(userID),
			Logger:   s.logger,
			Now:      s.now,
		}
		if s.journal != nil {
			opts.Journal = s.journal
		}
		sess = &session{flow: workflow.New(s.gateway, opts)}
		s.sessions[userID] = sess
	}

	sess.mu.Lock()
	sess.lastSeen = s.now()
	sess.mu.Unlock()
	return sess
}

func (s *Service) notifier(userID string) workflow.Notifier {
	if s.hub == nil {
		return nil
	}
	return workflow.NotifierFunc(func(t workflow.Toast) {
		s.hub.Publish(userID, sse.Event{Name: EventToast, Data: t})
	})
}

// SweepIdle drops sessions not used since cutoff and reports how many were
// dropped. A session with an attempt in progress is kept.
func (s *Service) SweepIdle(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for userID, sess := range s.sessions {
		sess.mu.Lock()
		stale := sess.lastSeen.Before(cutoff)
		sess.mu.Unlock()
		if stale && sess.flow.Snapshot().Phase == workflow.PhaseIdle {
			delete(s.sessions, userID)
			dropped++
		}
	}
	return dropped
}

func (s *Service) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Panel returns the attendance screen. When no attempt is running, today's
// record and the history are reloaded concurrently first.
func (s *Service) Panel(ctx context.Context, userID string) (panel.View, error) {
	sess := s.session(userID)

	snap := sess.flow.Snapshot()
	if snap.Phase == workflow.PhaseIdle && !snap.Busy {
		if err := s.refresh(ctx, sess); err != nil {
			return panel.View{}, err
		}
	}
	return s.view(sess), nil
}

func (s *Service) refresh(ctx context.Context, sess *session) error {
	var history []attendance.Record

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sess.flow.Load(gctx); err != nil && !errors.Is(err, workflow.ErrBusy) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		records, err := s.gateway.History(gctx, s.historyLimit)
		if err != nil {
			return fmt.Errorf("failed to load attendance history: %w", err)
		}
		history = records
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	sess.mu.Lock()
	sess.history = history
	sess.loaded = true
	sess.mu.Unlock()
	return nil
}

func (s *Service) reloadHistory(ctx context.Context, sess *session) {
	records, err := s.gateway.History(ctx, s.historyLimit)
	if err != nil {
		s.logger.Warn("failed to reload attendance history", "error", err)
		return
	}
	sess.mu.Lock()
	sess.history = records
	sess.mu.Unlock()
}

func (s *Service) view(sess *session) panel.View {
	sess.mu.Lock()
	history := make([]attendance.Record, len(sess.history))
	copy(history, sess.history)
	sess.mu.Unlock()

	return panel.Build(sess.flow.Snapshot(), history, s.loc)
}

// History returns up to limit records straight from the backend.
func (s *Service) History(ctx context.Context, limit int) ([]attendance.Record, error) {
	return s.gateway.History(ctx, limit)
}

// Attempts lists the user's journaled attempts, newest first.
func (s *Service) Attempts(ctx context.Context, userID string, limit int) ([]attempt.Attempt, error) {
	if s.journal == nil {
		return []attempt.Attempt{}, nil
	}
	return s.journal.ListByUser(ctx, userID, limit)
}

// Request opens the confirmation dialog. A session that has never been
// loaded reads today's record first so the guard sees real data.
func (s *Service) Request(ctx context.Context, userID string, action attendance.Action) (panel.View, error) {
	sess := s.session(userID)

	sess.mu.Lock()
	loaded := sess.loaded
	sess.mu.Unlock()
	if !loaded {
		if err := s.refresh(ctx, sess); err != nil {
			return panel.View{}, err
		}
	}

	if err := sess.flow.Request(action); err != nil {
		return panel.View{}, err
	}
	return s.view(sess), nil
}

func (s *Service) DismissIntent(ctx context.Context, userID string) (panel.View, error) {
	sess := s.session(userID)
	if err := sess.flow.DismissIntent(ctx); err != nil {
		return panel.View{}, err
	}
	return s.view(sess), nil
}

func (s *Service) ConfirmIntent(ctx context.Context, userID string) (StepResult, error) {
	sess := s.session(userID)
	action := sess.flow.Snapshot().Action

	outcome, err := sess.flow.ConfirmIntent(ctx)
	if err != nil {
		return StepResult{}, err
	}
	s.afterStep(ctx, sess, action, outcome)
	return StepResult{Outcome: outcome, View: s.view(sess)}, nil
}

func (s *Service) EditJustification(ctx context.Context, userID, text string) (panel.View, error) {
	sess := s.session(userID)
	if err := sess.flow.EditJustification(text); err != nil {
		return panel.View{}, err
	}
	return s.view(sess), nil
}

func (s *Service) Justify(ctx context.Context, userID, reason string) (StepResult, error) {
	sess := s.session(userID)
	action := sess.flow.Snapshot().Action

	outcome, err := sess.flow.Justify(ctx, reason)
	if err != nil {
		return StepResult{}, err
	}
	s.afterStep(ctx, sess, action, outcome)
	return StepResult{Outcome: outcome, View: s.view(sess)}, nil
}

func (s *Service) CancelJustification(ctx context.Context, userID string) (panel.View, error) {
	sess := s.session(userID)
	if err := sess.flow.CancelJustification(ctx); err != nil {
		return panel.View{}, err
	}
	return s.view(sess), nil
}

// afterStep refreshes the history once a check-out has been recorded.
func (s *Service) afterStep(ctx context.Context, sess *session, action attendance.Action, outcome workflow.Outcome) {
	if outcome == workflow.OutcomeSubmitted && action == attendance.ActionCheckOut {
		s.reloadHistory(ctx, sess)
	}
}
