package leave

import "errors"

var (
	ErrLeaveRequestNotFound    = errors.New("leave request not found")
	ErrLeaveRequestNotPending  = errors.New("only pending leave requests can be changed")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
)
