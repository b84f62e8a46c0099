package table

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrRecordNotFound  = errors.New("record not found in collection")
	ErrInvalidStatus   = errors.New("status is not allowed for this table")
	ErrNoStatusField   = errors.New("table has no status field")
	ErrNoQuantityField = errors.New("table has no quantity field")
	ErrInvalidQuantity = errors.New("quantity cannot go below zero")
	ErrUnknownToggle   = errors.New("field is not a declared toggle")
	ErrNoModal         = errors.New("no modal is open")
	ErrModalBusy       = errors.New("modal is submitting")
	ErrRowBusy         = errors.New("row has a pending operation")
	ErrNotMounted      = errors.New("table is not mounted")
	ErrNotPending      = errors.New("row has no pending delete")
)

// ValidationError is returned when a draft fails a pre-submit check.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
