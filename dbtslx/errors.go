package dbtslx

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuery     = errors.New("invalid query")
	ErrUnknownMetric    = fmt.Errorf("%w: unknown metric", ErrInvalidQuery)
	ErrUnknownDimension = fmt.Errorf("%w: unknown dimension", ErrInvalidQuery)
	ErrUnknownEntity    = fmt.Errorf("%w: unknown entity", ErrInvalidQuery)
	ErrInvalidGrain     = fmt.Errorf("%w: invalid time grain", ErrInvalidQuery)

	ErrQueryFailure   = errors.New("query failed")
	ErrQueryTimedOut  = errors.New("query timed out")
	ErrAlreadyPolling = errors.New("job is already in a terminal state")
)

// ValidationError reports a bad QueryRequest before any network call is
// made. Field names the offending identifier.
type ValidationError struct {
	Cause   error
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

func (e ValidationError) Unwrap() error {
	return e.Cause
}

// Error wraps failures talking to the gateway with enough context to
// diagnose without re-running: the operation, the endpoint and, where one
// exists, the query id.
type Error struct {
	Cause      error
	Operation  string
	Endpoint   string
	QueryId    string
	StatusCode int
}

func (e Error) Error() string {
	return fmt.Sprintf("semantic layer %s failed: %s", e.Operation, e.Cause.Error())
}

func (e Error) Unwrap() error {
	return e.Cause
}

// QueryFailureError carries the gateway's failure message verbatim. A failed
// semantic query is never retried automatically; the failure is usually in
// the input, not the infrastructure.
type QueryFailureError struct {
	QueryId string
	Message string
}

func (e QueryFailureError) Error() string {
	return e.Message
}

func (e QueryFailureError) Unwrap() error {
	return ErrQueryFailure
}
