package dialog

import (
	"strings"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
)

const (
	ipAlertLine     = "Your IP address differs from your usual check-in location."
	deviceAlertLine = "You are using a different device than usual."
	reasonRequired  = "Please enter a reason"
)

// Justification collects the mandatory reason for a flagged attempt. It never
// touches the network; the caller decides what to do with the reason.
type Justification struct {
	action  attendance.Action
	verdict attendance.FraudVerdict
	reason  string
	err     string
}

func NewJustification(action attendance.Action, verdict attendance.FraudVerdict) *Justification {
	return &Justification{action: action, verdict: verdict}
}

func (d *Justification) Action() attendance.Action {
	return d.action
}

func (d *Justification) Verdict() attendance.FraudVerdict {
	return d.verdict
}

func (d *Justification) Title() string {
	if d.action == attendance.ActionCheckOut {
		return "Unusual check-out detected"
	}
	return "Unusual check-in detected"
}

// Lines lists the signals that fired, followed by the server explanation.
func (d *Justification) Lines() []string {
	var lines []string
	if d.verdict.HasIPAlert {
		lines = append(lines, ipAlertLine)
	}
	if d.verdict.HasDeviceAlert {
		lines = append(lines, deviceAlertLine)
	}
	if d.verdict.Message != "" {
		lines = append(lines, d.verdict.Message)
	}
	return lines
}

// Edit replaces the typed text and clears any inline error.
func (d *Justification) Edit(text string) {
	d.reason = text
	d.err = ""
}

func (d *Justification) Reason() string {
	return d.reason
}

func (d *Justification) CanSubmit() bool {
	return strings.TrimSpace(d.reason) != ""
}

// FieldError is the inline error shown under the reason field.
func (d *Justification) FieldError() string {
	return d.err
}

// Submit returns the trimmed reason, or a validation error on "reason" that
// also becomes the inline error.
func (d *Justification) Submit() (string, error) {
	reason := strings.TrimSpace(d.reason)
	if reason == "" {
		d.err = reasonRequired
		return "", validator.ValidationErrors{{Field: "reason", Message: reasonRequired}}
	}
	d.err = ""
	return reason, nil
}

// Clone copies the dialog so it can be read without the owner's lock.
func (d *Justification) Clone() *Justification {
	c := *d
	return &c
}

// Cancel resets the dialog.
func (d *Justification) Cancel() {
	d.reason = ""
	d.err = ""
}

// View is a read-only copy for rendering.
type View struct {
	Action     attendance.Action       `json:"action"`
	Title      string                  `json:"title"`
	Verdict    attendance.FraudVerdict `json:"verdict"`
	Lines      []string                `json:"lines"`
	Reason     string                  `json:"reason"`
	FieldError string                  `json:"fieldError,omitempty"`
	CanSubmit  bool                    `json:"canSubmit"`
}

func (d *Justification) View() View {
	return View{
		Action:     d.action,
		Title:      d.Title(),
		Verdict:    d.verdict,
		Lines:      d.Lines(),
		Reason:     d.reason,
		FieldError: d.err,
		CanSubmit:  d.CanSubmit(),
	}
}
