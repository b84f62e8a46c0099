package appointment

import "errors"

var (
	ErrDateRequired    = errors.New("appointment date is required")
	ErrDateInPast      = errors.New("appointment date cannot be in the past")
	ErrPatientRequired = errors.New("appointment needs a patient")
)
