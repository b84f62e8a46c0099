package payment

import "errors"

var ErrOverviewUnavailable = errors.New("overview data unavailable")
