package dashboard

import "errors"

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrTableNotOpen    = errors.New("table is not open in this session")
)
