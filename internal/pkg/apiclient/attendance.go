package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
)

var _ attendance.Gateway = (*Client)(nil)

// Today returns the caller's record for the current day, or nil when the
// backend has none yet.
func (c *Client) Today(ctx context.Context) (*attendance.Record, error) {
	env, err := c.do(ctx, http.MethodGet, "/attendance/today", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch today's attendance: %w", err)
	}
	if isNull(env.Data) {
		return nil, nil
	}
	record, err := decodeData[attendance.Record](env)
	if err != nil {
		return nil, err
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid attendance record %q: %w", record.ID, err)
	}
	if record.ID == "" && record.CheckIn == nil {
		return nil, nil
	}
	return &record, nil
}

// PreCheck asks the backend whether action would be flagged. The verdict may
// come back as data.fraud, a top-level fraud member, or data itself.
func (c *Client) PreCheck(ctx context.Context, action attendance.Action) (attendance.FraudVerdict, error) {
	if !action.Valid() {
		return attendance.FraudVerdict{}, attendance.ErrInvalidAction
	}

	q := url.Values{}
	q.Set("type", string(action))

	env, err := c.do(ctx, http.MethodGet, "/attendance/pre-check-fraud", q, nil)
	if err != nil {
		return attendance.FraudVerdict{}, fmt.Errorf("fraud pre-check failed: %w", err)
	}

	return parseVerdict(env)
}

func parseVerdict(env *envelope) (attendance.FraudVerdict, error) {
	var verdict attendance.FraudVerdict

	if !isNull(env.Data) {
		var nested struct {
			Fraud json.RawMessage `json:"fraud"`
		}
		if err := json.Unmarshal(env.Data, &nested); err == nil && !isNull(nested.Fraud) {
			if err := json.Unmarshal(nested.Fraud, &verdict); err != nil {
				return verdict, fmt.Errorf("failed to decode fraud verdict: %w", err)
			}
			return verdict, nil
		}
	}

	if !isNull(env.Fraud) {
		if err := json.Unmarshal(env.Fraud, &verdict); err != nil {
			return verdict, fmt.Errorf("failed to decode fraud verdict: %w", err)
		}
		return verdict, nil
	}

	if !isNull(env.Data) {
		if err := json.Unmarshal(env.Data, &verdict); err != nil {
			return verdict, fmt.Errorf("failed to decode fraud verdict: %w", err)
		}
	}
	return verdict, nil
}

// Submit performs a check-in or check-out. reason is omitted from the body when nil.
func (c *Client) Submit(ctx context.Context, action attendance.Action, reason *string) (*attendance.Record, error) {
	if !action.Valid() {
		return nil, attendance.ErrInvalidAction
	}

	env, err := c.do(ctx, http.MethodPost, "/attendance/"+string(action), nil, attendance.SubmitRequest{FraudReason: reason})
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", action, err)
	}
	record, err := decodeData[attendance.Record](env)
	if err != nil {
		return nil, err
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid attendance record %q: %w", record.ID, err)
	}
	return &record, nil
}

func (c *Client) CheckIn(ctx context.Context, reason *string) (*attendance.Record, error) {
	return c.Submit(ctx, attendance.ActionCheckIn, reason)
}

func (c *Client) CheckOut(ctx context.Context, reason *string) (*attendance.Record, error) {
	return c.Submit(ctx, attendance.ActionCheckOut, reason)
}

// History returns the caller's most recent records.
func (c *Client) History(ctx context.Context, limit int) ([]attendance.Record, error) {
	env, err := c.do(ctx, http.MethodGet, "/attendance/history", pageQuery(0, limit), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance history: %w", err)
	}
	page, err := decodePage[attendance.Record](env)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
