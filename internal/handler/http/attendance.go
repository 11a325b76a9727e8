package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attempt"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-console/internal/panel"
	"github.com/cmlabs-hris/attendance-console/internal/service/console"
)

// AttendanceService drives the guarded check-in/check-out flow per user.
type AttendanceService interface {
	Panel(ctx context.Context, userID string) (panel.View, error)
	History(ctx context.Context, limit int) ([]attendance.Record, error)
	Attempts(ctx context.Context, userID string, limit int) ([]attempt.Attempt, error)
	Request(ctx context.Context, userID string, action attendance.Action) (panel.View, error)
	DismissIntent(ctx context.Context, userID string) (panel.View, error)
	ConfirmIntent(ctx context.Context, userID string) (console.StepResult, error)
	EditJustification(ctx context.Context, userID, text string) (panel.View, error)
	Justify(ctx context.Context, userID, reason string) (console.StepResult, error)
	CancelJustification(ctx context.Context, userID string) (panel.View, error)
}

type AttendanceHandler interface {
	Panel(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Attempts(w http.ResponseWriter, r *http.Request)
	Request(w http.ResponseWriter, r *http.Request)
	ConfirmIntent(w http.ResponseWriter, r *http.Request)
	DismissIntent(w http.ResponseWriter, r *http.Request)
	EditJustification(w http.ResponseWriter, r *http.Request)
	ConfirmJustification(w http.ResponseWriter, r *http.Request)
	CancelJustification(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService AttendanceService
}

func NewAttendanceHandler(attendanceService AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// Panel implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Panel(w http.ResponseWriter, r *http.Request) {
	view, err := h.attendanceService.Panel(r.Context(), getUserIDFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, view)
}

// History implements AttendanceHandler.
func (h *AttendanceHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	filter := attendance.HistoryFilter{Limit: getIntQueryParam(r, "limit", 0)}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	records, err := h.attendanceService.History(r.Context(), filter.Limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, records)
}

// Attempts implements AttendanceHandler.
func (h *AttendanceHandlerImpl) Attempts(w http.ResponseWriter, r *http.Request) {
	filter := attempt.ListFilter{Limit: getIntQueryParam(r, "limit", 0)}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	attempts, err := h.attendanceService.Attempts(r.Context(), getUserIDFromContext(r), filter.Limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, attempts)
}

// Request implements AttendanceHandler. It opens the confirmation dialog.
func (h *AttendanceHandlerImpl) Request(w http.ResponseWriter, r *http.Request) {
	action, err := attendance.ParseAction(chi.URLParam(r, "action"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	view, err := h.attendanceService.Request(r.Context(), getUserIDFromContext(r), action)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, view)
}

// ConfirmIntent implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ConfirmIntent(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ConfirmIntent(r.Context(), getUserIDFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// DismissIntent implements AttendanceHandler.
func (h *AttendanceHandlerImpl) DismissIntent(w http.ResponseWriter, r *http.Request) {
	view, err := h.attendanceService.DismissIntent(r.Context(), getUserIDFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, view)
}

// EditJustification implements AttendanceHandler.
func (h *AttendanceHandlerImpl) EditJustification(w http.ResponseWriter, r *http.Request) {
	var req attendance.JustificationRequest
	if !decodeJSON(w, r, &req, "EditJustification") {
		return
	}

	view, err := h.attendanceService.EditJustification(r.Context(), getUserIDFromContext(r), req.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, view)
}

// ConfirmJustification implements AttendanceHandler.
func (h *AttendanceHandlerImpl) ConfirmJustification(w http.ResponseWriter, r *http.Request) {
	var req attendance.JustificationRequest
	if !decodeJSON(w, r, &req, "ConfirmJustification") {
		return
	}

	result, err := h.attendanceService.Justify(r.Context(), getUserIDFromContext(r), req.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// CancelJustification implements AttendanceHandler.
func (h *AttendanceHandlerImpl) CancelJustification(w http.ResponseWriter, r *http.Request) {
	view, err := h.attendanceService.CancelJustification(r.Context(), getUserIDFromContext(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, view)
}
