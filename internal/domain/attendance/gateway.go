package attendance

import "context"

// Gateway is the employee-side attendance API as seen by the console.
type Gateway interface {
	// Today returns the current day's record, or nil when there is none yet.
	Today(ctx context.Context) (*Record, error)

	// PreCheck asks the backend whether an upcoming action would be flagged.
	// It is read-only and may be called any number of times.
	PreCheck(ctx context.Context, action Action) (FraudVerdict, error)

	// Submit performs the action. reason is nil when no justification was collected.
	Submit(ctx context.Context, action Action, reason *string) (*Record, error)

	// History returns the most recent records, newest first.
	History(ctx context.Context, limit int) ([]Record, error)
}
