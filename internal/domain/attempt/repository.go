package attempt

import (
	"context"
	"time"
)

// Repository persists resolved workflow attempts.
type Repository interface {
	Create(ctx context.Context, a *Attempt) error
	// ListByUser returns the newest entries first.
	ListByUser(ctx context.Context, userID string, limit int) ([]Attempt, error)
	// DeleteOlderThan removes entries resolved before cutoff and reports how many went.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
