package notification

import "errors"

var (
	ErrNotificationNotFound   = errors.New("notification not found")
	ErrNotificationIDRequired = errors.New("notification id is required")
)
