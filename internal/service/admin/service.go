package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-console/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-console/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
)

// bulkConcurrency bounds the status updates sent to the backend at once.
const bulkConcurrency = 4

// Backend is the admin half of the attendance API.
type Backend interface {
	AdminTodayAttendances(ctx context.Context) (attendance.TodayOverview, error)
	AdminListAttendances(ctx context.Context, filter attendance.AttendanceFilter) (apiclient.Page[attendance.Record], error)
	AdminGetAttendance(ctx context.Context, id string) (*attendance.Record, error)
	AdminUpdateAttendanceStatus(ctx context.Context, id string, status attendance.Status) (*attendance.Record, error)

	AdminListUsers(ctx context.Context, filter user.UserFilter) (apiclient.Page[user.User], error)
	AdminCreateUser(ctx context.Context, req user.CreateUserRequest) (*user.User, error)
	AdminUpdateUser(ctx context.Context, req user.UpdateUserRequest) (*user.User, error)
	AdminDeleteUser(ctx context.Context, id string) error

	AdminGetSettings(ctx context.Context) (settings.Settings, error)
	AdminUpdateSettings(ctx context.Context, req settings.UpdateRequest) (settings.Settings, error)

	AdminListNotifications(ctx context.Context, limit int) (notification.Feed, error)
	AdminMarkNotificationRead(ctx context.Context, id string) error
	AdminMarkAllNotificationsRead(ctx context.Context) error

	AdminListLeaveRequests(ctx context.Context, filter leave.ListFilter) (apiclient.Page[leave.Request], error)
	AdminApproveLeaveRequest(ctx context.Context, id string) (*leave.Request, error)
	AdminRejectLeaveRequest(ctx context.Context, req leave.RejectRequest) (*leave.Request, error)
}

type AdminServiceImpl struct {
	backend Backend
}

func NewAdminService(backend Backend) *AdminServiceImpl {
	return &AdminServiceImpl{backend: backend}
}

// ========================================
// ATTENDANCES
// ========================================

func (s *AdminServiceImpl) TodayAttendances(ctx context.Context) (attendance.TodayOverview, error) {
	return s.backend.AdminTodayAttendances(ctx)
}

func (s *AdminServiceImpl) ListAttendances(ctx context.Context, filter attendance.AttendanceFilter) (apiclient.Page[attendance.Record], error) {
	if err := filter.Validate(); err != nil {
		return apiclient.Page[attendance.Record]{}, err
	}
	return s.backend.AdminListAttendances(ctx, filter)
}

func (s *AdminServiceImpl) GetAttendance(ctx context.Context, id string) (*attendance.Record, error) {
	if validator.IsEmpty(id) {
		return nil, requiredID()
	}
	record, err := s.backend.AdminGetAttendance(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, attendance.ErrAttendanceNotFound)
	}
	return record, nil
}

func (s *AdminServiceImpl) UpdateAttendanceStatus(ctx context.Context, req attendance.UpdateStatusRequest) (*attendance.Record, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	record, err := s.backend.AdminUpdateAttendanceStatus(ctx, req.ID, req.Status)
	if err != nil {
		return nil, notFoundAs(err, attendance.ErrAttendanceNotFound)
	}
	return record, nil
}

// BulkUpdateAttendanceStatus applies one status to many records. A failure on
// one record does not stop the others.
func (s *AdminServiceImpl) BulkUpdateAttendanceStatus(ctx context.Context, req attendance.BulkUpdateStatusRequest) (attendance.BulkUpdateStatusResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.BulkUpdateStatusResponse{}, err
	}

	var (
		mu     sync.Mutex
		ok     = make([]bool, len(req.IDs))
		failed = make(map[string]string)
	)

	var g errgroup.Group
	g.SetLimit(bulkConcurrency)
	for i, id := range req.IDs {
		g.Go(func() error {
			_, err := s.backend.AdminUpdateAttendanceStatus(ctx, id, req.Status)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("bulk attendance status update failed", "attendance_id", id, "status", req.Status, "error", err)
				failed[id] = failureText(err)
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	resp := attendance.BulkUpdateStatusResponse{Updated: make([]string, 0, len(req.IDs))}
	for i, id := range req.IDs {
		if ok[i] {
			resp.Updated = append(resp.Updated, id)
		}
	}
	if len(failed) > 0 {
		resp.Failed = failed
	}
	return resp, nil
}

// ========================================
// USERS
// ========================================

func (s *AdminServiceImpl) ListUsers(ctx context.Context, filter user.UserFilter) (apiclient.Page[user.User], error) {
	if err := filter.Validate(); err != nil {
		return apiclient.Page[user.User]{}, err
	}
	return s.backend.AdminListUsers(ctx, filter)
}

func (s *AdminServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.backend.AdminCreateUser(ctx, req)
}

func (s *AdminServiceImpl) UpdateUser(ctx context.Context, req user.UpdateUserRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.backend.AdminUpdateUser(ctx, req)
}

func (s *AdminServiceImpl) DeleteUser(ctx context.Context, id string) error {
	if validator.IsEmpty(id) {
		return user.ErrUserIDRequired
	}
	return s.backend.AdminDeleteUser(ctx, id)
}

// ========================================
// SETTINGS
// ========================================

func (s *AdminServiceImpl) GetSettings(ctx context.Context) (settings.Settings, error) {
	return s.backend.AdminGetSettings(ctx)
}

func (s *AdminServiceImpl) UpdateSettings(ctx context.Context, req settings.UpdateRequest) (settings.Settings, error) {
	if err := req.Validate(); err != nil {
		return settings.Settings{}, err
	}
	return s.backend.AdminUpdateSettings(ctx, req)
}

// ========================================
// NOTIFICATIONS
// ========================================

func (s *AdminServiceImpl) ListNotifications(ctx context.Context, req notification.ListRequest) (notification.Feed, error) {
	if err := req.Validate(); err != nil {
		return notification.Feed{}, err
	}
	return s.backend.AdminListNotifications(ctx, req.Limit)
}

func (s *AdminServiceImpl) MarkNotificationRead(ctx context.Context, id string) error {
	if validator.IsEmpty(id) {
		return notification.ErrNotificationIDRequired
	}
	if err := s.backend.AdminMarkNotificationRead(ctx, id); err != nil {
		return notFoundAs(err, notification.ErrNotificationNotFound)
	}
	return nil
}

func (s *AdminServiceImpl) MarkAllNotificationsRead(ctx context.Context) error {
	return s.backend.AdminMarkAllNotificationsRead(ctx)
}

// ========================================
// LEAVE REQUESTS
// ========================================

func (s *AdminServiceImpl) ListLeaveRequests(ctx context.Context, filter leave.ListFilter) (apiclient.Page[leave.Request], error) {
	if err := filter.Validate(); err != nil {
		return apiclient.Page[leave.Request]{}, err
	}
	return s.backend.AdminListLeaveRequests(ctx, filter)
}

func (s *AdminServiceImpl) ApproveLeaveRequest(ctx context.Context, id string) (*leave.Request, error) {
	if validator.IsEmpty(id) {
		return nil, requiredID()
	}
	return s.backend.AdminApproveLeaveRequest(ctx, id)
}

func (s *AdminServiceImpl) RejectLeaveRequest(ctx context.Context, req leave.RejectRequest) (*leave.Request, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.RejectionReason = strings.TrimSpace(req.RejectionReason)
	return s.backend.AdminRejectLeaveRequest(ctx, req)
}

func requiredID() error {
	return validator.ValidationErrors{{Field: "id", Message: "id is required"}}
}

// notFoundAs swaps a backend 404 for the domain's own not-found error.
func notFoundAs(err, notFound error) error {
	if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.StatusCode == http.StatusNotFound {
		return notFound
	}
	return err
}

func failureText(err error) string {
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		return apiErr.UserMessage()
	}
	return err.Error()
}
