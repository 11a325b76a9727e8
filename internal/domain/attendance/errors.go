package attendance

import "errors"

// Attendance domain errors
var (
	ErrInvalidAction          = errors.New("action must be one of: check-in, check-out")
	ErrActionNotAllowed       = errors.New("action is not available for today's attendance")
	ErrCheckOutWithoutCheckIn = errors.New("check-out recorded without a check-in")
	ErrAttendanceNotFound     = errors.New("attendance record not found")
	ErrInvalidStatus          = errors.New("status must be one of: completed, rejected")
)
