package dialog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
)

func TestForAction(t *testing.T) {
	in := ForAction(attendance.ActionCheckIn)
	assert.Equal(t, "Check in", in.ConfirmLabel)
	assert.Equal(t, "Cancel", in.CancelLabel)
	assert.Equal(t, VariantDefault, in.Variant)

	out := ForAction(attendance.ActionCheckOut)
	assert.Equal(t, "Confirm check-out", out.Title)
	assert.Equal(t, "Check out", out.ConfirmLabel)
}

func TestJustification_Lines(t *testing.T) {
	tests := []struct {
		name    string
		verdict attendance.FraudVerdict
		want    []string
	}{
		{"ip only", attendance.FraudVerdict{Detected: true, HasIPAlert: true}, []string{ipAlertLine}},
		{"device only", attendance.FraudVerdict{Detected: true, HasDeviceAlert: true}, []string{deviceAlertLine}},
		{"both with message", attendance.FraudVerdict{Detected: true, HasIPAlert: true, HasDeviceAlert: true, Message: "Check with HR"},
			[]string{ipAlertLine, deviceAlertLine, "Check with HR"}},
		{"message only", attendance.FraudVerdict{Detected: true, Message: "IP mismatch"}, []string{"IP mismatch"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewJustification(attendance.ActionCheckOut, tt.verdict)
			assert.Equal(t, tt.want, d.Lines())
		})
	}
}

func TestJustification_SubmitRejectsBlankReason(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		d := NewJustification(attendance.ActionCheckIn, attendance.FraudVerdict{Detected: true})
		d.Edit(text)

		assert.False(t, d.CanSubmit())

		reason, err := d.Submit()
		require.Error(t, err)
		assert.Empty(t, reason)

		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs))
		msg, ok := verrs.Field("reason")
		assert.True(t, ok)
		assert.Equal(t, msg, d.FieldError())
	}
}

func TestJustification_EditClearsError(t *testing.T) {
	d := NewJustification(attendance.ActionCheckIn, attendance.FraudVerdict{Detected: true})

	_, err := d.Submit()
	require.Error(t, err)
	assert.NotEmpty(t, d.FieldError())

	d.Edit("w")
	assert.Empty(t, d.FieldError())
	assert.True(t, d.CanSubmit())
}

func TestJustification_SubmitTrims(t *testing.T) {
	d := NewJustification(attendance.ActionCheckOut, attendance.FraudVerdict{Detected: true})
	d.Edit("  working remotely \n")

	reason, err := d.Submit()

	require.NoError(t, err)
	assert.Equal(t, "working remotely", reason)
	assert.Empty(t, d.FieldError())
}

func TestJustification_Cancel(t *testing.T) {
	d := NewJustification(attendance.ActionCheckOut, attendance.FraudVerdict{Detected: true})
	d.Edit("")
	_, _ = d.Submit()
	d.Edit("half typed")

	d.Cancel()

	assert.Empty(t, d.Reason())
	assert.Empty(t, d.FieldError())
	v := d.View()
	assert.False(t, v.CanSubmit)
	assert.Equal(t, "Unusual check-out detected", v.Title)
}
