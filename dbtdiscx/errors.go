package dbtdiscx

import (
	"errors"
	"fmt"
)

var (
	ErrModelNotFound = errors.New("model not found")
)

// Error wraps a discovery API failure with the operation that produced it.
type Error struct {
	Cause     error
	Operation string
	Endpoint  string
	ModelName string
}

func (e Error) Error() string {
	if e.ModelName != "" {
		return fmt.Sprintf("discovery %s for model %s failed: %s", e.Operation, e.ModelName, e.Cause)
	}
	return fmt.Sprintf("discovery %s failed: %s", e.Operation, e.Cause)
}

func (e Error) Unwrap() error {
	return e.Cause
}
