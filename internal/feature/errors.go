package feature

import (
	"fmt"
	"strings"
)

// SourceError records the failure of one dataset source.
type SourceError struct {
	Source string
	Err    error
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// LoadError is the single error surfaced when any required dataset fails to
// load. No store is produced alongside it.
type LoadError struct {
	Failures []SourceError
}

func (e *LoadError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return "feature: load failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the per-source causes to errors.Is and errors.As.
func (e *LoadError) Unwrap() []error {
	out := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		out[i] = f.Err
	}
	return out
}
