package user

import (
	"strings"

	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
)

// UserFilter is the admin employee listing query.
type UserFilter struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *UserFilter) Validate() error {
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
	if f.Limit > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 1000",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateUserRequest struct {
	EmployeeCode       string `json:"employeeCode"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	Role               Role   `json:"role"`
	CustomCheckInTime  string `json:"customCheckInTime,omitempty"`
	CustomCheckOutTime string `json:"customCheckOutTime,omitempty"`
}

func (r *CreateUserRequest) Validate() error {
	errs := validateProfile(r.EmployeeCode, r.Name, r.Email, r.Role, r.CustomCheckInTime, r.CustomCheckOutTime)

	if len(r.Password) < 6 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 6 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateUserRequest struct {
	ID                 string `json:"-"`
	EmployeeCode       string `json:"employeeCode"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Role               Role   `json:"role"`
	CustomCheckInTime  string `json:"customCheckInTime,omitempty"`
	CustomCheckOutTime string `json:"customCheckOutTime,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	errs := validateProfile(r.EmployeeCode, r.Name, r.Email, r.Role, r.CustomCheckInTime, r.CustomCheckOutTime)

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

func validateProfile(code, name, email string, role Role, checkIn, checkOut string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(code) {
		errs = append(errs, validator.ValidationError{
			Field:   "employeeCode",
			Message: "employeeCode is required",
		})
	}
	if validator.IsEmpty(name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if !validator.IsValidEmail(strings.TrimSpace(email)) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address",
		})
	}
	if role != RoleAdmin && role != RoleEmployee {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: admin, employee",
		})
	}
	if checkIn != "" && !validator.IsValidClockTime(checkIn) {
		errs = append(errs, validator.ValidationError{
			Field:   "customCheckInTime",
			Message: "customCheckInTime must be in HH:mm format",
		})
	}
	if checkOut != "" && !validator.IsValidClockTime(checkOut) {
		errs = append(errs, validator.ValidationError{
			Field:   "customCheckOutTime",
			Message: "customCheckOutTime must be in HH:mm format",
		})
	}

	return errs
}
