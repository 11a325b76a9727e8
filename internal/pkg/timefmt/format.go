// Package timefmt renders dates, times and durations for the console views.
package timefmt

import (
	"fmt"
	"math"
	"time"
)

const (
	DateLayout     = "2006/01/02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006/01/02 15:04:05"
)

func in(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}

func FormatDate(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(DateLayout)
}

func FormatTime(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(TimeLayout)
}

func FormatDateTime(t time.Time, loc *time.Location) string {
	return in(t, loc).Format(DateTimeLayout)
}

// FormatHours renders fractional hours as "Xh Ym".
func FormatHours(hours float64) string {
	if hours <= 0 || math.IsNaN(hours) {
		return "0h 0m"
	}
	h := int(math.Floor(hours))
	m := int(math.Round((hours - float64(h)) * 60))
	if m == 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatTimeDifference renders a minute count such as a late arrival.
func FormatTimeDifference(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}

	hours := minutes / 60
	rest := minutes % 60
	if rest == 0 {
		return fmt.Sprintf("%d h", hours)
	}
	return fmt.Sprintf("%d h %d min", hours, rest)
}
