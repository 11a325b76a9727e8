package workflow

import "errors"

var (
	ErrBusy             = errors.New("another attendance action is in progress")
	ErrNoPendingAttempt = errors.New("no attendance action is waiting for this step")
	ErrUnknownPolicy    = errors.New("unknown pre-check policy")
)
