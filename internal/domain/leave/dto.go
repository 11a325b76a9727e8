package leave

import (
	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
)

// ========================================
// LEAVE REQUEST DTOs
// ========================================

type CreateRequest struct {
	LeaveDate       string   `json:"leaveDate"` // YYYY-MM-DD
	LeaveType       Type     `json:"leaveType"`
	Reason          string   `json:"reason"`
	SupportingStaff []string `json:"supportingStaff"`
}

func (r *CreateRequest) Validate() error {
	errs := validateForm(r.LeaveDate, r.LeaveType, r.Reason, r.SupportingStaff)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRequest struct {
	ID              string   `json:"-"`
	LeaveDate       string   `json:"leaveDate"`
	LeaveType       Type     `json:"leaveType"`
	Reason          string   `json:"reason"`
	SupportingStaff []string `json:"supportingStaff"`
}

func (r *UpdateRequest) Validate() error {
	errs := validateForm(r.LeaveDate, r.LeaveType, r.Reason, r.SupportingStaff)

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateForm(date string, leaveType Type, reason string, staff []string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if _, valid := validator.IsValidDate(date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "leaveDate",
			Message: "leaveDate must be in YYYY-MM-DD format",
		})
	}
	if !leaveType.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "leaveType",
			Message: "leaveType must be one of: half-day-morning, half-day-afternoon, full-day",
		})
	}
	if validator.IsEmpty(reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}
	if id, dup := validator.HasDuplicates(staff); dup {
		errs = append(errs, validator.ValidationError{
			Field:   "supportingStaff",
			Message: "supporting staff listed twice: " + id,
		})
	}

	return errs
}

// ListFilter is shared by the employee and admin listings.
type ListFilter struct {
	Status    *string `json:"status,omitempty"`
	StartDate *string `json:"startDate,omitempty"`
	EndDate   *string `json:"endDate,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

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

	if f.Status != nil && !Status(*f.Status).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: pending, approved, rejected",
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

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RejectRequest for rejecting a leave request
type RejectRequest struct {
	ID              string `json:"-"`
	RejectionReason string `json:"rejectionReason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RejectionReason) {
		errs = append(errs, validator.ValidationError{
			Field:   "rejectionReason",
			Message: ErrRejectionReasonRequired.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
