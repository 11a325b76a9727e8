package leave

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/attendance-console/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
)

// Backend is the employee leave API.
type Backend interface {
	MyLeaveRequests(ctx context.Context, page, limit int) (apiclient.Page[leave.Request], error)
	GetLeaveRequest(ctx context.Context, id string) (*leave.Request, error)
	CreateLeaveRequest(ctx context.Context, req leave.CreateRequest) (*leave.Request, error)
	UpdateLeaveRequest(ctx context.Context, req leave.UpdateRequest) (*leave.Request, error)
	DeleteLeaveRequest(ctx context.Context, id string) error
	LeaveEmployees(ctx context.Context) ([]user.User, error)
}

type LeaveServiceImpl struct {
	backend Backend
}

func NewLeaveService(backend Backend) *LeaveServiceImpl {
	return &LeaveServiceImpl{backend: backend}
}

func (s *LeaveServiceImpl) MyRequests(ctx context.Context, filter leave.ListFilter) (apiclient.Page[leave.Request], error) {
	if err := filter.Validate(); err != nil {
		return apiclient.Page[leave.Request]{}, err
	}
	return s.backend.MyLeaveRequests(ctx, filter.Page, filter.Limit)
}

// Employees lists colleagues selectable as supporting staff.
func (s *LeaveServiceImpl) Employees(ctx context.Context) ([]user.User, error) {
	return s.backend.LeaveEmployees(ctx)
}

func (s *LeaveServiceImpl) Create(ctx context.Context, req leave.CreateRequest) (*leave.Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.backend.CreateLeaveRequest(ctx, req)
}

func (s *LeaveServiceImpl) Update(ctx context.Context, req leave.UpdateRequest) (*leave.Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensurePending(ctx, req.ID); err != nil {
		return nil, err
	}
	return s.backend.UpdateLeaveRequest(ctx, req)
}

func (s *LeaveServiceImpl) Delete(ctx context.Context, id string) error {
	if validator.IsEmpty(id) {
		return validator.ValidationErrors{{Field: "id", Message: "id is required"}}
	}
	if err := s.ensurePending(ctx, id); err != nil {
		return err
	}
	return s.backend.DeleteLeaveRequest(ctx, id)
}

// ensurePending refuses to touch a request that has already been reviewed.
// The backend enforces the same rule.
func (s *LeaveServiceImpl) ensurePending(ctx context.Context, id string) error {
	req, err := s.backend.GetLeaveRequest(ctx, id)
	if err != nil {
		if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
			return leave.ErrLeaveRequestNotFound
		}
		return fmt.Errorf("failed to check leave request status: %w", err)
	}
	if !req.IsPending() {
		return leave.ErrLeaveRequestNotPending
	}
	return nil
}
