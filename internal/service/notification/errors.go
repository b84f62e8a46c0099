package notification

import "errors"

var (
	ErrNotFound       = errors.New("notification not found")
	ErrUnknownAction  = errors.New("action is not offered by this notification")
	ErrActionRequired = errors.New("confirmation must be answered with one of its actions")
)
