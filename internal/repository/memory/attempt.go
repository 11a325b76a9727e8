package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attempt"
)

// attemptRepository keeps the journal in process memory. Entries are lost on
// restart.
type attemptRepository struct {
	mu       sync.RWMutex
	attempts []attempt.Attempt
}

func NewAttemptRepository() attempt.Repository {
	return &attemptRepository{}
}

func (r *attemptRepository) Create(ctx context.Context, a *attempt.Attempt) error {
	if a.UserID == "" {
		return attempt.ErrUserIDRequired
	}
	if !a.Outcome.Valid() {
		return attempt.ErrInvalidOutcome
	}

	stored := *a
	if a.Verdict != nil {
		v := *a.Verdict
		stored.Verdict = &v
	}
	if a.Reason != nil {
		reason := *a.Reason
		stored.Reason = &reason
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, stored)
	return nil
}

func (r *attemptRepository) ListByUser(ctx context.Context, userID string, limit int) ([]attempt.Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]attempt.Attempt, 0)
	for _, a := range r.attempts {
		if a.UserID == userID {
			result = append(result, a)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *attemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.attempts[:0]
	var deleted int64
	for _, a := range r.attempts {
		if a.ResolvedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, a)
	}
	r.attempts = kept
	return deleted, nil
}
