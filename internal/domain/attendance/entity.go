package attendance

import (
	"encoding/json"
	"time"

	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
)

// Action is one of the two mutating attendance operations.
type Action string

const (
	ActionCheckIn  Action = "check-in"
	ActionCheckOut Action = "check-out"
)

func (a Action) Valid() bool {
	return a == ActionCheckIn || a == ActionCheckOut
}

// ParseAction validates a raw action name such as a URL segment.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", ErrInvalidAction
	}
	return a, nil
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusAbsent    Status = "absent"
	StatusRejected  Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusAbsent, StatusRejected:
		return true
	}
	return false
}

// DeviceInfo is the browser/OS fingerprint captured with a check event.
type DeviceInfo struct {
	Browser        string `json:"browser"`
	BrowserVersion string `json:"browserVersion"`
	OS             string `json:"os"`
	OSVersion      string `json:"osVersion"`
	Device         string `json:"device"`
	DeviceType     string `json:"deviceType"`
	UserAgent      string `json:"userAgent,omitempty"`
}

// CheckEvent is immutable once recorded by the backend.
type CheckEvent struct {
	Type       Action     `json:"type"`
	Time       time.Time  `json:"time"`
	IPAddress  string     `json:"ipAddress"`
	DeviceInfo DeviceInfo `json:"deviceInfo"`
	Location   string     `json:"location,omitempty"`
}

// Record is one employee's attendance for one calendar day.
type Record struct {
	ID                   string      `json:"id"`
	User                 user.Ref    `json:"userId"`
	Date                 time.Time   `json:"date"`
	CheckIn              *CheckEvent `json:"checkIn,omitempty"`
	CheckOut             *CheckEvent `json:"checkOut,omitempty"`
	WorkedHours          float64     `json:"workedHours,omitempty"`
	Status               Status      `json:"status"`
	HasDeviceAlert       bool        `json:"hasDeviceAlert"`
	HasIPAlert           bool        `json:"hasIpAlert"`
	AlertMessage         string      `json:"alertMessage,omitempty"`
	HasTimeAlert         bool        `json:"hasTimeAlert,omitempty"`
	TimeAlertMessage     string      `json:"timeAlertMessage,omitempty"`
	CheckInLateMinutes   int         `json:"checkInLateMinutes,omitempty"`
	CheckOutEarlyMinutes int         `json:"checkOutEarlyMinutes,omitempty"`
	FraudReason          string      `json:"fraudReason,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// UnmarshalJSON accepts both "id" and the backend's "_id".
func (r *Record) UnmarshalJSON(b []byte) error {
	type alias Record
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

// Validate checks the invariants the console relies on when rendering.
func (r *Record) Validate() error {
	if r.CheckOut != nil && r.CheckIn == nil {
		return ErrCheckOutWithoutCheckIn
	}
	return nil
}

// CanCheckIn reports whether a check-in may be started. A nil record means
// nothing has been recorded today.
func (r *Record) CanCheckIn() bool {
	return r == nil || r.CheckIn == nil
}

func (r *Record) CanCheckOut() bool {
	return r != nil && r.CheckIn != nil && r.CheckOut == nil
}

// Allows reports whether the record is in a state where action makes sense.
func (r *Record) Allows(action Action) bool {
	switch action {
	case ActionCheckIn:
		return r.CanCheckIn()
	case ActionCheckOut:
		return r.CanCheckOut()
	}
	return false
}

func (r *Record) HasAlert() bool {
	return r != nil && (r.HasDeviceAlert || r.HasIPAlert || r.HasTimeAlert)
}

// AlertText picks the most specific alert message: the time-policy message
// wins over the generic device/IP message.
func (r *Record) AlertText() string {
	if r == nil {
		return ""
	}
	if r.HasTimeAlert && r.TimeAlertMessage != "" {
		return r.TimeAlertMessage
	}
	return r.AlertMessage
}

// Clone returns a deep copy so callers can never patch a shared record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.CheckIn != nil {
		in := *r.CheckIn
		c.CheckIn = &in
	}
	if r.CheckOut != nil {
		out := *r.CheckOut
		c.CheckOut = &out
	}
	return &c
}

// FraudVerdict is the pre-check result for one attempt. It is never stored.
type FraudVerdict struct {
	Detected       bool   `json:"detected"`
	HasDeviceAlert bool   `json:"hasDeviceAlert"`
	HasIPAlert     bool   `json:"hasIpAlert"`
	Message        string `json:"message"`
}

// Flagged reports whether the user must justify the attempt.
func (v FraudVerdict) Flagged() bool {
	return v.Detected
}

// TodayOverview is the admin dashboard summary of the current day.
type TodayOverview struct {
	Attendances     []Record    `json:"attendances"`
	AbsentEmployees []user.User `json:"absentEmployees"`
	Stats           TodayStats  `json:"stats"`
}

type TodayStats struct {
	Total      int `json:"total"`
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	WithAlerts int `json:"withAlerts"`
}
