package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmptyTitle = errors.New("exhibition title is required")
	ErrNoMuseum   = errors.New("museum id is required")
)

// ResolutionError reports a hierarchy name (country, city, museum, artist)
// that cannot become a row. It is fatal to the single record being ingested
// and is caught by the coordinator.
type ResolutionError struct {
	Kind string // "country", "city", "museum", "artist"
	Name string
}

func (e *ResolutionError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%s name is empty", e.Kind)
	}
	return fmt.Sprintf("cannot resolve %s %q", e.Kind, e.Name)
}

func NewResolutionError(kind, name string) *ResolutionError {
	return &ResolutionError{Kind: kind, Name: name}
}

// IsResolution reports whether err is (or wraps) a ResolutionError.
func IsResolution(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

// PersistenceError wraps an unexpected database failure: a constraint
// violation outside the conflict paths the engine handles, or a connectivity
// failure. The enclosing transaction has been rolled back by the time it
// surfaces.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
