package attempt

import "errors"

var (
	ErrInvalidOutcome = errors.New("invalid attempt outcome")
	ErrUserIDRequired = errors.New("attempt user id is required")
)
