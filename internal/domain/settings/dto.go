package settings

import (
	"strings"

	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
)

type UpdateRequest struct {
	DefaultCheckInTime  string   `json:"defaultCheckInTime,omitempty"`
	DefaultCheckOutTime string   `json:"defaultCheckOutTime,omitempty"`
	AllowedIPs          []string `json:"allowedIPs"`
}

// Validate checks clock times and the IP allow-list. Entries are trimmed in place.
func (r *UpdateRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DefaultCheckInTime != "" && !validator.IsValidClockTime(r.DefaultCheckInTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "defaultCheckInTime",
			Message: "defaultCheckInTime must be in HH:mm format",
		})
	}
	if r.DefaultCheckOutTime != "" && !validator.IsValidClockTime(r.DefaultCheckOutTime) {
		errs = append(errs, validator.ValidationError{
			Field:   "defaultCheckOutTime",
			Message: "defaultCheckOutTime must be in HH:mm format",
		})
	}

	for i, ip := range r.AllowedIPs {
		r.AllowedIPs[i] = strings.TrimSpace(ip)
		if !validator.IsValidIPOrCIDR(r.AllowedIPs[i]) {
			errs = append(errs, validator.ValidationError{
				Field:   "allowedIPs",
				Message: "invalid IP address or CIDR: " + ip,
			})
		}
	}
	if ip, dup := validator.HasDuplicates(r.AllowedIPs); dup {
		errs = append(errs, validator.ValidationError{
			Field:   "allowedIPs",
			Message: "IP address listed twice: " + ip,
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
