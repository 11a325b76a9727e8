package dialog

import (
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
)

type Variant string

const (
	VariantDefault Variant = "default"
	VariantWarning Variant = "warning"
)

// Confirm is a generic yes/no prompt.
type Confirm struct {
	Title        string  `json:"title"`
	Message      string  `json:"message"`
	ConfirmLabel string  `json:"confirmLabel"`
	CancelLabel  string  `json:"cancelLabel"`
	Variant      Variant `json:"variant"`
}

// NewConfirm fills in the default labels and variant.
func NewConfirm(title, message string) Confirm {
	return Confirm{
		Title:        title,
		Message:      message,
		ConfirmLabel: "Confirm",
		CancelLabel:  "Cancel",
		Variant:      VariantDefault,
	}
}

// ForAction is the prompt shown before a check-in or check-out attempt.
func ForAction(action attendance.Action) Confirm {
	switch action {
	case attendance.ActionCheckOut:
		c := NewConfirm("Confirm check-out", "Do you want to check out now?")
		c.ConfirmLabel = "Check out"
		return c
	default:
		c := NewConfirm("Confirm check-in", "Do you want to check in now?")
		c.ConfirmLabel = "Check in"
		return c
	}
}
