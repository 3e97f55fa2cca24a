package errors

import "net/http"

var (
	ErrProviderRejected = &DomainError{
		Code:    "PROVIDER_REJECTED",
		Message: "request rejected by M-PESA",
		Status:  http.StatusBadRequest,
	}
	ErrProviderFailure = &DomainError{
		Code:    "PROVIDER_FAILURE",
		Message: "M-PESA request failed",
		Status:  http.StatusInternalServerError,
	}
	ErrPersistence = &DomainError{
		Code:    "PERSISTENCE_FAILURE",
		Message: "failed to save transaction",
		Status:  http.StatusInternalServerError,
	}
	ErrNotFound = &DomainError{
		Code:    "NOT_FOUND",
		Message: "Transaction not found",
		Status:  http.StatusNotFound,
	}
)
