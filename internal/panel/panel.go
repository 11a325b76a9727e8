package panel

import (
	"time"

	"github.com/cmlabs-hris/attendance-console/internal/dialog"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/timefmt"
	"github.com/cmlabs-hris/attendance-console/internal/workflow"
)

// DisplayState is what the employee sees for today.
type DisplayState string

const (
	StateNotCheckedIn     DisplayState = "not_checked_in"
	StateWorking          DisplayState = "working"
	StateApproved         DisplayState = "approved"
	StateRejected         DisplayState = "rejected"
	StateAwaitingApproval DisplayState = "awaiting_approval"
)

func (s DisplayState) Label() string {
	switch s {
	case StateWorking:
		return "Working"
	case StateApproved:
		return "Approved"
	case StateRejected:
		return "Rejected"
	case StateAwaitingApproval:
		return "Awaiting approval"
	default:
		return "Not checked in"
	}
}

// Derive maps today's record onto a display state.
func Derive(record *attendance.Record) DisplayState {
	switch {
	case record == nil || record.CheckIn == nil:
		return StateNotCheckedIn
	case record.CheckOut == nil:
		return StateWorking
	case record.Status == attendance.StatusCompleted:
		return StateApproved
	case record.Status == attendance.StatusRejected:
		return StateRejected
	default:
		return StateAwaitingApproval
	}
}

// Alert is the persistent warning box shown while today's record carries a flag.
type Alert struct {
	TimeMessage  string `json:"timeMessage,omitempty"`
	LateBy       string `json:"lateBy,omitempty"`
	EarlyBy      string `json:"earlyBy,omitempty"`
	Message      string `json:"message,omitempty"`
	DeviceChange bool   `json:"deviceChange"`
	IPChange     bool   `json:"ipChange"`
}

type HistoryRow struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"`
	CheckIn     string            `json:"checkIn"`
	CheckOut    string            `json:"checkOut"`
	WorkedHours string            `json:"workedHours"`
	Status      attendance.Status `json:"status"`
	HasAlert    bool              `json:"hasAlert"`
}

type Stats struct {
	TotalDays        int    `json:"totalDays"`
	CompletedDays    int    `json:"completedDays"`
	TotalWorkedHours string `json:"totalWorkedHours"`
}

// View is the full attendance screen.
type View struct {
	State         DisplayState       `json:"state"`
	Label         string             `json:"label"`
	Detail        string             `json:"detail,omitempty"`
	Date          string             `json:"date,omitempty"`
	CheckInTime   string             `json:"checkInTime,omitempty"`
	CheckOutTime  string             `json:"checkOutTime,omitempty"`
	WorkedHours   string             `json:"workedHours,omitempty"`
	FraudReason   string             `json:"fraudReason,omitempty"`
	CanCheckIn    bool               `json:"canCheckIn"`
	CanCheckOut   bool               `json:"canCheckOut"`
	Busy          bool               `json:"busy"`
	Phase         workflow.Phase     `json:"phase"`
	Alert         *Alert             `json:"alert,omitempty"`
	Confirm       *dialog.Confirm    `json:"confirm,omitempty"`
	Justification *dialog.View       `json:"justification,omitempty"`
	LastError     string             `json:"lastError,omitempty"`
	Record        *attendance.Record `json:"record"`
	History       []HistoryRow       `json:"history"`
	Stats         Stats              `json:"stats"`
}

// Build renders a workflow snapshot plus recent history in loc.
func Build(snap workflow.Snapshot, history []attendance.Record, loc *time.Location) View {
	record := snap.Record
	state := Derive(record)

	v := View{
		State:       state,
		Label:       state.Label(),
		CanCheckIn:  snap.CanCheckIn,
		CanCheckOut: snap.CanCheckOut,
		Busy:        snap.Busy,
		Phase:       snap.Phase,
		LastError:   snap.LastError,
		Record:      record,
	}

	if record != nil {
		if !record.Date.IsZero() {
			v.Date = timefmt.FormatDate(record.Date, loc)
		}
		if record.CheckIn != nil {
			v.CheckInTime = timefmt.FormatTime(record.CheckIn.Time, loc)
		}
		if record.CheckOut != nil {
			v.CheckOutTime = timefmt.FormatTime(record.CheckOut.Time, loc)
			v.WorkedHours = timefmt.FormatHours(record.WorkedHours)
		}
		v.FraudReason = record.FraudReason
		v.Alert = alertFor(record)
	}

	switch state {
	case StateNotCheckedIn:
		v.Detail = "Press check-in to start your day"
	case StateWorking:
		v.Detail = "Checked in at " + v.CheckInTime
	case StateRejected:
		v.Detail = "Your attendance was rejected by an administrator"
	default:
		v.Detail = "Worked " + v.WorkedHours
	}

	switch st := snap.State.(type) {
	case workflow.Confirming:
		c := st.Dialog
		v.Confirm = &c
	case workflow.AwaitingJustification:
		d := st.Dialog()
		v.Justification = &d
	}

	v.History, v.Stats = summarize(history, loc)
	return v
}

func alertFor(r *attendance.Record) *Alert {
	if !r.HasAlert() {
		return nil
	}

	a := &Alert{
		Message:      r.AlertMessage,
		DeviceChange: r.HasDeviceAlert,
		IPChange:     r.HasIPAlert,
	}
	if r.HasTimeAlert && r.TimeAlertMessage != "" {
		a.TimeMessage = r.TimeAlertMessage
		if r.CheckInLateMinutes > 0 {
			a.LateBy = timefmt.FormatTimeDifference(r.CheckInLateMinutes)
		}
		if r.CheckOutEarlyMinutes > 0 {
			a.EarlyBy = timefmt.FormatTimeDifference(r.CheckOutEarlyMinutes)
		}
	}
	return a
}

func summarize(history []attendance.Record, loc *time.Location) ([]HistoryRow, Stats) {
	rows := make([]HistoryRow, 0, len(history))
	stats := Stats{TotalDays: len(history)}
	var total float64

	for i := range history {
		r := &history[i]
		row := HistoryRow{
			ID:          r.ID,
			Date:        timefmt.FormatDate(r.Date, loc),
			CheckIn:     "-",
			CheckOut:    "-",
			WorkedHours: "-",
			Status:      r.Status,
			HasAlert:    r.HasAlert(),
		}
		if r.CheckIn != nil {
			row.CheckIn = timefmt.FormatTime(r.CheckIn.Time, loc)
		}
		if r.CheckOut != nil {
			row.CheckOut = timefmt.FormatTime(r.CheckOut.Time, loc)
		}
		if r.WorkedHours > 0 {
			row.WorkedHours = timefmt.FormatHours(r.WorkedHours)
			total += r.WorkedHours
		}
		if r.Status == attendance.StatusCompleted {
			stats.CompletedDays++
		}
		rows = append(rows, row)
	}

	stats.TotalWorkedHours = timefmt.FormatHours(total)
	return rows, stats
}
