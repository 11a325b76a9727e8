package leave

import (
	"encoding/json"
	"time"

	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
)

type Type string

const (
	TypeHalfDayMorning   Type = "half-day-morning"
	TypeHalfDayAfternoon Type = "half-day-afternoon"
	TypeFullDay          Type = "full-day"
)

func (t Type) Valid() bool {
	switch t {
	case TypeHalfDayMorning, TypeHalfDayAfternoon, TypeFullDay:
		return true
	}
	return false
}

// Label is the human-readable leave type.
func (t Type) Label() string {
	switch t {
	case TypeHalfDayMorning:
		return "Half day (morning)"
	case TypeHalfDayAfternoon:
		return "Half day (afternoon)"
	case TypeFullDay:
		return "Full day"
	default:
		return string(t)
	}
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Request is a leave request filed by an employee.
type Request struct {
	ID              string     `json:"id"`
	User            user.Ref   `json:"userId"`
	LeaveDate       time.Time  `json:"leaveDate"`
	LeaveType       Type       `json:"leaveType"`
	Reason          string     `json:"reason"`
	SupportingStaff []user.Ref `json:"supportingStaff,omitempty"`
	Status          Status     `json:"status"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	ReviewedBy      user.Ref   `json:"reviewedBy"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// UnmarshalJSON accepts both "id" and the backend's "_id".
func (r *Request) UnmarshalJSON(b []byte) error {
	type alias Request
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = aux.MongoID
	}
	return nil
}

// IsPending reports whether the owner may still edit or delete the request.
func (r *Request) IsPending() bool {
	return r.Status == StatusPending
}

// SupportingStaffNames lists the names of populated supporting staff.
func (r *Request) SupportingStaffNames() []string {
	return user.Names(r.SupportingStaff)
}
