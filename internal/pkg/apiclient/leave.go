package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cmlabs-hris/attendance-console/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
)

func (c *Client) MyLeaveRequests(ctx context.Context, page, limit int) (Page[leave.Request], error) {
	env, err := c.do(ctx, http.MethodGet, "/leave-requests/my-requests", pageQuery(page, limit), nil)
	if err != nil {
		return Page[leave.Request]{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return decodePage[leave.Request](env)
}

func (c *Client) GetLeaveRequest(ctx context.Context, id string) (*leave.Request, error) {
	env, err := c.do(ctx, http.MethodGet, "/leave-requests/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leave request: %w", err)
	}
	req, err := decodeData[leave.Request](env)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) CreateLeaveRequest(ctx context.Context, req leave.CreateRequest) (*leave.Request, error) {
	env, err := c.do(ctx, http.MethodPost, "/leave-requests", nil, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create leave request: %w", err)
	}
	created, err := decodeData[leave.Request](env)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateLeaveRequest(ctx context.Context, req leave.UpdateRequest) (*leave.Request, error) {
	env, err := c.do(ctx, http.MethodPut, "/leave-requests/"+url.PathEscape(req.ID), nil, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update leave request: %w", err)
	}
	updated, err := decodeData[leave.Request](env)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteLeaveRequest(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/leave-requests/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	return nil
}

// LeaveEmployees lists colleagues that can be named as supporting staff.
func (c *Client) LeaveEmployees(ctx context.Context) ([]user.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/leave-requests/employees", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	users, err := decodeData[[]user.User](env)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []user.User{}
	}
	return users, nil
}
