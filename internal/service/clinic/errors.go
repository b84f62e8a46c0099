package clinic

import "errors"

var ErrUnknownEntity = errors.New("unknown table entity")
