package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attempt"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/database"
)

type attemptRepository struct {
	db *database.DB
}

func NewAttemptRepository(db *database.DB) attempt.Repository {
	return &attemptRepository{db: db}
}

// EnsureSchema creates the journal table and its indexes when missing.
func EnsureSchema(ctx context.Context, db *database.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS attendance_attempts (
			id              UUID PRIMARY KEY,
			user_id         TEXT NOT NULL,
			action          TEXT NOT NULL,
			verdict         JSONB,
			precheck_failed BOOLEAN NOT NULL DEFAULT FALSE,
			reason          TEXT,
			outcome         TEXT NOT NULL,
			error_message   TEXT NOT NULL DEFAULT '',
			started_at      TIMESTAMPTZ NOT NULL,
			resolved_at     TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_attempts_user_started
			ON attendance_attempts (user_id, started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_attendance_attempts_resolved
			ON attendance_attempts (resolved_at)`,
	}

	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		for _, stmt := range statements {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("failed to ensure attempt journal schema: %w", err)
			}
		}
		return nil
	})
}

func (r *attemptRepository) Create(ctx context.Context, a *attempt.Attempt) error {
	if a.UserID == "" {
		return attempt.ErrUserIDRequired
	}
	if !a.Outcome.Valid() {
		return attempt.ErrInvalidOutcome
	}

	q := GetQuerier(ctx, r.db)

	var verdictJSON []byte
	if a.Verdict != nil {
		b, err := json.Marshal(a.Verdict)
		if err != nil {
			return fmt.Errorf("failed to marshal fraud verdict: %w", err)
		}
		verdictJSON = b
	}

	query := `
		INSERT INTO attendance_attempts
			(id, user_id, action, verdict, precheck_failed, reason, outcome, error_message, started_at, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		a.ID,
		a.UserID,
		string(a.Action),
		verdictJSON,
		a.PrecheckFailed,
		a.Reason,
		string(a.Outcome),
		a.ErrorMessage,
		a.StartedAt,
		a.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create attempt: %w", err)
	}

	return nil
}

func (r *attemptRepository) ListByUser(ctx context.Context, userID string, limit int) ([]attempt.Attempt, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, action, verdict, precheck_failed, reason, outcome, error_message, started_at, resolved_at
		FROM attendance_attempts
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]attempt.Attempt, 0)
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attempts: %w", err)
	}

	return attempts, nil
}

func (r *attemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendance_attempts WHERE resolved_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge attempts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAttempt(row pgx.Row) (attempt.Attempt, error) {
	var (
		a           attempt.Attempt
		action      string
		outcome     string
		verdictJSON []byte
	)

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&action,
		&verdictJSON,
		&a.PrecheckFailed,
		&a.Reason,
		&outcome,
		&a.ErrorMessage,
		&a.StartedAt,
		&a.ResolvedAt,
	)
	if err != nil {
		return attempt.Attempt{}, fmt.Errorf("failed to scan attempt: %w", err)
	}

	a.Action = attendance.Action(action)
	a.Outcome = attempt.Outcome(outcome)
	if len(verdictJSON) > 0 {
		var v attendance.FraudVerdict
		if err := json.Unmarshal(verdictJSON, &v); err != nil {
			return attempt.Attempt{}, fmt.Errorf("failed to unmarshal fraud verdict: %w", err)
		}
		a.Verdict = &v
	}

	return a, nil
}
