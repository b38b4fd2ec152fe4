package dbthttpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
)

var (
	ErrConnectError         = errors.New("http connect failed")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

type ConnectError struct {
	Cause error
}

func (e ConnectError) Error() string {
	return fmt.Sprintf("%s: %s", ErrConnectError, e.Cause)
}

func (e ConnectError) Unwrap() error {
	return ErrConnectError
}

type ServiceError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

func (e ServiceError) Error() string {
	return fmt.Sprintf("service error: status %d from %s: %s", e.StatusCode, e.Endpoint, e.Body)
}

// ServerError represents errors reported inside a GraphQL response envelope.
// These are semantic failures from the gateway, never retried by the transport.
type ServerError struct {
	Messages []string
}

func (e ServerError) Error() string {
	if len(e.Messages) == 1 {
		return fmt.Sprintf("graphql error: %s", e.Messages[0])
	}
	return fmt.Sprintf("graphql error: %s (+ %d other errors)", e.Messages[0], len(e.Messages)-1)
}

type configError struct {
	Description string
}

func (e configError) Error() string {
	return ErrInvalidConfiguration.Error() + ": " + e.Description
}

func (e configError) Unwrap() error {
	return ErrInvalidConfiguration
}

// IsTransient classifies transport-level failures that are safe to retry.
// Semantic failures (graphql errors, 4xx) are never transient; cancellation
// of the calling context is never transient either.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode >= 500
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, ErrConnectError)
}
