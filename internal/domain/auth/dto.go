package auth

import (
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
)

// LoginRequest accepts an email or an employee code as LoginID.
type LoginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.LoginID) {
		errs = append(errs, validator.ValidationError{
			Field:   "loginId",
			Message: "loginId is required",
		})
	}
	if r.Password == "" {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoginResponse struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}
