package reconcile

import "errors"

// Service errors
var (
	ErrMissingReference = errors.New("callback carries no correlation id")
	ErrStore            = errors.New("failed to store callback result")
)
