package stk

import "errors"

// Service errors
var (
	ErrRejected      = errors.New("stk push not accepted")
	ErrSavePayment   = errors.New("failed to save stk payment")
	ErrNotConfigured = errors.New("stk push is not configured")
)
