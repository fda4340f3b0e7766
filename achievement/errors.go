package achievement

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid achievement definition")
	ErrDuplicate  = errors.New("achievement already pending")
	ErrNotFound   = errors.New("achievement not found")
)

// ValidationError reports the first field of a definition that failed its shape check
type ValidationError struct {
	Name   string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("achievement %q: field %s: %s", e.Name, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DuplicateError is returned when a name is registered while an entry with that name is pending
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("achievement %q is already pending", e.Name)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// NotFoundError is returned by Delete when the name is neither pending nor achieved
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("achievement named %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
