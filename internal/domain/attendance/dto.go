package attendance

import (
	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// SubmitRequest is the body of POST /attendance/check-in and /check-out.
type SubmitRequest struct {
	FraudReason *string `json:"fraudReason,omitempty"`
}

// JustificationRequest carries the text typed into the justification dialog.
type JustificationRequest struct {
	Reason string `json:"reason"`
}

type HistoryFilter struct {
	Limit int `json:"limit"`
}

func (f *HistoryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 10
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AttendanceFilter is the admin attendance listing query.
type AttendanceFilter struct {
	UserID    *string `json:"userId,omitempty"`
	StartDate *string `json:"startDate,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"endDate,omitempty"`   // YYYY-MM-DD
	Month     *int    `json:"month,omitempty"`
	Year      *int    `json:"year,omitempty"`
	Status    *string `json:"status,omitempty"`
	HasAlert  *bool   `json:"hasAlert,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !Status(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, completed, absent, rejected",
		})
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "startDate",
				Message: "startDate must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "endDate",
				Message: "endDate must be in YYYY-MM-DD format",
			})
		}
	}

	if f.Month != nil && (*f.Month < 1 || *f.Month > 12) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if f.Year != nil && (*f.Year < 2000 || *f.Year > 9999) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be a four-digit year",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateStatusRequest approves (completed) or rejects an attendance record.
type UpdateStatusRequest struct {
	ID     string `json:"-"`
	Status Status `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.Status != StatusCompleted && r.Status != StatusRejected {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: ErrInvalidStatus.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BulkUpdateStatusRequest approves or rejects several records at once.
type BulkUpdateStatusRequest struct {
	IDs    []string `json:"ids"`
	Status Status   `json:"status"`
}

func (r *BulkUpdateStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.IDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "ids",
			Message: "at least one attendance id is required",
		})
	}
	if len(r.IDs) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "ids",
			Message: "at most 100 attendance ids per request",
		})
	}
	if id, dup := validator.HasDuplicates(r.IDs); dup {
		errs = append(errs, validator.ValidationError{
			Field:   "ids",
			Message: "duplicate attendance id: " + id,
		})
	}
	if r.Status != StatusCompleted && r.Status != StatusRejected {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: ErrInvalidStatus.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BulkUpdateStatusResponse struct {
	Updated []string          `json:"updated"`
	Failed  map[string]string `json:"failed,omitempty"`
}
