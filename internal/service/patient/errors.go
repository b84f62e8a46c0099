package patient

import "errors"

var (
	ErrPatientIDRequired = errors.New("patient id is required")
	ErrUnknownCondition  = errors.New("unknown medical condition")
	ErrReadOnlyField     = errors.New("field cannot be set on a medical history")
)
