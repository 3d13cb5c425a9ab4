// Package input reads notification requests for lmk send.
package input

import (
	"context"

	"github.com/jmylchreest/lmk/internal/model"
)

// Source yields notification requests.
type Source interface {
	// Name returns the source identifier (e.g. "stdin").
	Name() string

	// Requests reads every request the source holds. Fields missing from
	// an entry take their value from defaults.
	Requests(ctx context.Context, defaults model.Request) ([]model.Request, error)
}

// AdapterError represents a source-related error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
