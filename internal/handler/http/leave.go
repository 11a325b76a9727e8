package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-console/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
	"github.com/cmlabs-hris/attendance-console/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
)

type LeaveService interface {
	MyRequests(ctx context.Context, filter leave.ListFilter) (apiclient.Page[leave.Request], error)
	Employees(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, req leave.CreateRequest) (*leave.Request, error)
	Update(ctx context.Context, req leave.UpdateRequest) (*leave.Request, error)
	Delete(ctx context.Context, id string) error
}

type LeaveHandler interface {
	ListMyRequests(w http.ResponseWriter, r *http.Request)
	ListEmployees(w http.ResponseWriter, r *http.Request)
	CreateRequest(w http.ResponseWriter, r *http.Request)
	UpdateRequest(w http.ResponseWriter, r *http.Request)
	DeleteRequest(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService LeaveService
}

func NewLeaveHandler(leaveService LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// ListMyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	filter := leave.ListFilter{
		Page:  getIntQueryParam(r, "page", 0),
		Limit: getIntQueryParam(r, "limit", 0),
	}

	page, err := l.leaveService.MyRequests(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMeta(w, page.Items, response.MetaFromPagination(page.Pagination))
}

// ListEmployees implements LeaveHandler.
func (l *LeaveHandlerImpl) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := l.leaveService.Employees(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, employees)
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateRequest
	if !decodeJSON(w, r, &req, "CreateRequest") {
		return
	}

	created, err := l.leaveService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Leave request created successfully", created)
}

// UpdateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateRequest
	if !decodeJSON(w, r, &req, "UpdateRequest") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := l.leaveService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request updated successfully", updated)
}

// DeleteRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	if err := l.leaveService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Leave request deleted successfully", nil)
}
