package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/panel"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/timefmt"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-console/internal/workflow"
)

// attemptSession walks one check-in or check-out through the terminal.
type attemptSession struct {
	flow      *workflow.Workflow
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
	reason    string
}

func (s *attemptSession) run(ctx context.Context, action attendance.Action) error {
	if err := s.flow.Request(action); err != nil {
		if errors.Is(err, attendance.ErrActionNotAllowed) {
			return fmt.Errorf("cannot %s: today's attendance does not allow it", action)
		}
		return err
	}

	if !s.assumeYes {
		st, _ := s.flow.Snapshot().State.(workflow.Confirming)
		fmt.Fprintf(s.out, "%s\n%s\n", st.Dialog.Title, st.Dialog.Message)
		answer, err := prompt(s.in, s.out, "["+st.Dialog.ConfirmLabel+"? y/N] ")
		if err != nil || !isYes(answer) {
			_ = s.flow.DismissIntent(ctx)
			fmt.Fprintln(s.out, "Nothing was recorded.")
			return nil
		}
	}

	outcome, err := s.flow.ConfirmIntent(ctx)
	if err != nil {
		return err
	}
	if outcome != workflow.OutcomeAwaitingJustification {
		return s.finish(outcome)
	}

	st, _ := s.flow.Snapshot().State.(workflow.AwaitingJustification)
	view := st.Dialog()
	fmt.Fprintf(s.out, "\n%s\n", view.Title)
	for _, line := range view.Lines {
		fmt.Fprintf(s.out, "  - %s\n", line)
	}

	reason := s.reason
	for {
		if reason == "" {
			reason, err = prompt(s.in, s.out, "Reason (empty line to cancel): ")
			if err != nil || strings.TrimSpace(reason) == "" {
				if cerr := s.flow.CancelJustification(ctx); cerr != nil {
					return cerr
				}
				fmt.Fprintln(s.out, "Cancelled. Nothing was recorded.")
				return nil
			}
		}

		outcome, err = s.flow.Justify(ctx, reason)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msg, _ := verrs.Field("reason")
			fmt.Fprintln(s.out, msg)
			reason = ""
			continue
		}
		if err != nil {
			return err
		}
		return s.finish(outcome)
	}
}

func (s *attemptSession) finish(outcome workflow.Outcome) error {
	switch outcome {
	case workflow.OutcomeSubmitted:
		return nil
	case workflow.OutcomeBlocked, workflow.OutcomeFailed:
		return fmt.Errorf("%s", s.flow.Snapshot().LastError)
	}
	return nil
}

func terminalNotifier(out io.Writer) workflow.Notifier {
	return workflow.NotifierFunc(func(t workflow.Toast) {
		switch t.Level {
		case workflow.LevelSuccess:
			fmt.Fprintf(out, "✓ %s\n", t.Message)
		case workflow.LevelWarning:
			fmt.Fprintf(out, "! %s\n", t.Message)
		default:
			fmt.Fprintf(out, "✗ %s\n", t.Message)
		}
	})
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// userError prefers the backend's own message.
func userError(err error) error {
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		return errors.New(apiErr.UserMessage())
	}
	return err
}

func printView(out io.Writer, v panel.View) {
	fmt.Fprintf(out, "Today: %s\n", v.Label)
	if v.Detail != "" {
		fmt.Fprintf(out, "  %s\n", v.Detail)
	}
	if v.CheckOutTime != "" {
		fmt.Fprintf(out, "  Check-out: %s\n", v.CheckOutTime)
	}
	if msg := alertText(v.Alert); msg != "" {
		fmt.Fprintf(out, "  Warning: %s\n", msg)
	}
	if v.FraudReason != "" {
		fmt.Fprintf(out, "  Reason given: %s\n", v.FraudReason)
	}

	fmt.Fprintf(out, "\nLast %d days: %d completed, %s worked\n", v.Stats.TotalDays, v.Stats.CompletedDays, v.Stats.TotalWorkedHours)
	for _, row := range v.History {
		fmt.Fprintf(out, "  %-12s %-9s %-9s %-8s %s\n", row.Date, row.CheckIn, row.CheckOut, row.WorkedHours, row.Status)
	}
}

// alertText applies the same precedence as Record.AlertText.
func alertText(a *panel.Alert) string {
	if a == nil {
		return ""
	}
	if a.TimeMessage != "" {
		return a.TimeMessage
	}
	return a.Message
}

func printHistory(out io.Writer, records []attendance.Record, loc *time.Location) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No attendance records.")
		return
	}
	for _, r := range records {
		in, checkOut := "-", "-"
		if r.CheckIn != nil {
			in = timefmt.FormatTime(r.CheckIn.Time, loc)
		}
		if r.CheckOut != nil {
			checkOut = timefmt.FormatTime(r.CheckOut.Time, loc)
		}
		fmt.Fprintf(out, "%-12s %-9s %-9s %s\n", timefmt.FormatDate(r.Date, loc), in, checkOut, r.Status)
	}
}
