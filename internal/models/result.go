package models

import (
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
)

// Result is what state-owning operations hand back to the view layer instead
// of returning an error. Error holds a single message, Errors a per-field map.
type Result struct {
	Success bool
	Message string
	Error   string
	Errors  map[string][]string
	Err     error
}

func OK(message string) Result {
	return Result{Success: true, Message: message}
}

// Failed converts err into a failed Result, using fallback when err carries
// no usable message.
func Failed(err error, fallback string) Result {
	res := Result{Success: false, Error: fallback, Err: err}

	if appErr, ok := appErrors.IsAppError(err); ok {
		if appErr.Message != "" {
			res.Error = appErr.Message
		}

		if len(appErr.Fields) > 0 {
			res.Errors = appErr.Fields
		}
	}

	return res
}
