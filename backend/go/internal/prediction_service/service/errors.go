package service

import "errors"

var (
	// ErrInvalidInput marks a request rejected before any external call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOracleUnavailable marks a failed oracle call.
	ErrOracleUnavailable = errors.New("prediction oracle unavailable")
	// ErrStoreUnavailable marks a history read while the store is not connected.
	ErrStoreUnavailable = errors.New("prediction store not connected")
	// ErrHistoryFailure marks a history read the connected store could not serve.
	ErrHistoryFailure = errors.New("could not fetch history")
)

// ValidationError is an ErrInvalidInput with a message safe to return to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
