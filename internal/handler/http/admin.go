package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-console/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-console/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
	"github.com/cmlabs-hris/attendance-console/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
)

type AdminService interface {
	TodayAttendances(ctx context.Context) (attendance.TodayOverview, error)
	ListAttendances(ctx context.Context, filter attendance.AttendanceFilter) (apiclient.Page[attendance.Record], error)
	GetAttendance(ctx context.Context, id string) (*attendance.Record, error)
	UpdateAttendanceStatus(ctx context.Context, req attendance.UpdateStatusRequest) (*attendance.Record, error)
	BulkUpdateAttendanceStatus(ctx context.Context, req attendance.BulkUpdateStatusRequest) (attendance.BulkUpdateStatusResponse, error)

	ListUsers(ctx context.Context, filter user.UserFilter) (apiclient.Page[user.User], error)
	CreateUser(ctx context.Context, req user.CreateUserRequest) (*user.User, error)
	UpdateUser(ctx context.Context, req user.UpdateUserRequest) (*user.User, error)
	DeleteUser(ctx context.Context, id string) error

	GetSettings(ctx context.Context) (settings.Settings, error)
	UpdateSettings(ctx context.Context, req settings.UpdateRequest) (settings.Settings, error)

	ListNotifications(ctx context.Context, req notification.ListRequest) (notification.Feed, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error

	ListLeaveRequests(ctx context.Context, filter leave.ListFilter) (apiclient.Page[leave.Request], error)
	ApproveLeaveRequest(ctx context.Context, id string) (*leave.Request, error)
	RejectLeaveRequest(ctx context.Context, req leave.RejectRequest) (*leave.Request, error)
}

type AdminHandler interface {
	TodayAttendances(w http.ResponseWriter, r *http.Request)
	ListAttendances(w http.ResponseWriter, r *http.Request)
	GetAttendance(w http.ResponseWriter, r *http.Request)
	UpdateAttendanceStatus(w http.ResponseWriter, r *http.Request)
	BulkUpdateAttendanceStatus(w http.ResponseWriter, r *http.Request)

	ListUsers(w http.ResponseWriter, r *http.Request)
	CreateUser(w http.ResponseWriter, r *http.Request)
	UpdateUser(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)

	GetSettings(w http.ResponseWriter, r *http.Request)
	UpdateSettings(w http.ResponseWriter, r *http.Request)

	ListNotifications(w http.ResponseWriter, r *http.Request)
	MarkNotificationRead(w http.ResponseWriter, r *http.Request)
	MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request)

	ListLeaveRequests(w http.ResponseWriter, r *http.Request)
	ApproveLeaveRequest(w http.ResponseWriter, r *http.Request)
	RejectLeaveRequest(w http.ResponseWriter, r *http.Request)
}

type AdminHandlerImpl struct {
	adminService AdminService
}

func NewAdminHandler(adminService AdminService) AdminHandler {
	return &AdminHandlerImpl{adminService: adminService}
}

// ========================================
// ATTENDANCES
// ========================================

func (h *AdminHandlerImpl) TodayAttendances(w http.ResponseWriter, r *http.Request) {
	overview, err := h.adminService.TodayAttendances(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, overview)
}

func (h *AdminHandlerImpl) ListAttendances(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		UserID:    getOptionalQueryParam(r, "userId"),
		StartDate: getOptionalQueryParam(r, "startDate"),
		EndDate:   getOptionalQueryParam(r, "endDate"),
		Status:    getOptionalQueryParam(r, "status"),
		Month:     getOptionalIntQueryParam(r, "month"),
		Year:      getOptionalIntQueryParam(r, "year"),
		Page:      getIntQueryParam(r, "page", 0),
		Limit:     getIntQueryParam(r, "limit", 0),
	}
	if v := r.URL.Query().Get("hasAlert"); v != "" {
		if hasAlert, err := strconv.ParseBool(v); err == nil {
			filter.HasAlert = &hasAlert
		}
	}

	page, err := h.adminService.ListAttendances(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, page.Items, response.MetaFromPagination(page.Pagination))
}

func (h *AdminHandlerImpl) GetAttendance(w http.ResponseWriter, r *http.Request) {
	record, err := h.adminService.GetAttendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, record)
}

func (h *AdminHandlerImpl) UpdateAttendanceStatus(w http.ResponseWriter, r *http.Request) {
	var req attendance.UpdateStatusRequest
	if !decodeJSON(w, r, &req, "UpdateAttendanceStatus") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	record, err := h.adminService.UpdateAttendanceStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Attendance status updated successfully", record)
}

func (h *AdminHandlerImpl) BulkUpdateAttendanceStatus(w http.ResponseWriter, r *http.Request) {
	var req attendance.BulkUpdateStatusRequest
	if !decodeJSON(w, r, &req, "BulkUpdateAttendanceStatus") {
		return
	}

	resp, err := h.adminService.BulkUpdateAttendanceStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, resp)
}

// ========================================
// USERS
// ========================================

func (h *AdminHandlerImpl) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := user.UserFilter{
		Page:  getIntQueryParam(r, "page", 0),
		Limit: getIntQueryParam(r, "limit", 0),
	}

	page, err := h.adminService.ListUsers(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, page.Items, response.MetaFromPagination(page.Pagination))
}

func (h *AdminHandlerImpl) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if !decodeJSON(w, r, &req, "CreateUser") {
		return
	}

	created, err := h.adminService.CreateUser(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "User created successfully", created)
}

func (h *AdminHandlerImpl) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req user.UpdateUserRequest
	if !decodeJSON(w, r, &req, "UpdateUser") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := h.adminService.UpdateUser(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "User updated successfully", updated)
}

func (h *AdminHandlerImpl) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "User deleted successfully", nil)
}

// ========================================
// SETTINGS
// ========================================

func (h *AdminHandlerImpl) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.adminService.GetSettings(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, s)
}

func (h *AdminHandlerImpl) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settings.UpdateRequest
	if !decodeJSON(w, r, &req, "UpdateSettings") {
		return
	}

	s, err := h.adminService.UpdateSettings(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Settings updated successfully", s)
}

// ========================================
// NOTIFICATIONS
// ========================================

func (h *AdminHandlerImpl) ListNotifications(w http.ResponseWriter, r *http.Request) {
	req := notification.ListRequest{Limit: getIntQueryParam(r, "limit", 0)}

	feed, err := h.adminService.ListNotifications(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, feed)
}

func (h *AdminHandlerImpl) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.MarkNotificationRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Notification marked as read", nil)
}

func (h *AdminHandlerImpl) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.adminService.MarkAllNotificationsRead(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}

// ========================================
// LEAVE REQUESTS
// ========================================

func (h *AdminHandlerImpl) ListLeaveRequests(w http.ResponseWriter, r *http.Request) {
	filter := leave.ListFilter{
		Status:    getOptionalQueryParam(r, "status"),
		StartDate: getOptionalQueryParam(r, "startDate"),
		EndDate:   getOptionalQueryParam(r, "endDate"),
		Page:      getIntQueryParam(r, "page", 0),
		Limit:     getIntQueryParam(r, "limit", 0),
	}

	page, err := h.adminService.ListLeaveRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, page.Items, response.MetaFromPagination(page.Pagination))
}

func (h *AdminHandlerImpl) ApproveLeaveRequest(w http.ResponseWriter, r *http.Request) {
	approved, err := h.adminService.ApproveLeaveRequest(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request approved successfully", approved)
}

func (h *AdminHandlerImpl) RejectLeaveRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.RejectRequest
	if !decodeJSON(w, r, &req, "RejectLeaveRequest") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	rejected, err := h.adminService.RejectLeaveRequest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request rejected successfully", rejected)
}
