package editor

import (
	"errors"
	"fmt"
)

var (
	ErrNotOpen      = errors.New("no plot is being edited")
	ErrAlreadyOpen  = errors.New("a plot is already being edited")
	ErrUnknownPlot  = errors.New("plot not found")
	ErrUnknownCrop  = errors.New("crop not found in catalog")
	ErrUnknownGroup = errors.New("crop group not found in catalog")
	ErrUnknownField = errors.New("field is not editable")
	ErrFieldLocked  = errors.New("field is fixed for new plots")
)

// ValidationError reports a draft field that blocks saving. Drafts failing
// local checks never reach the backend; Err is set when the backend itself
// rejected the record.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed call to the persistence service.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsPersistence(err error) bool {
	var p *PersistenceError
	return errors.As(err, &p)
}
