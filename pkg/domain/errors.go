package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Conflict reasons are wrapped by ConflictError so callers
// can match them with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrDuplicateName       = errors.New("duplicate name")
	ErrUnitOccupied        = errors.New("unit already has an active tenant")
	ErrInvoicePeriodExists = errors.New("invoice already exists for period")
	ErrNoActiveTenant      = errors.New("unit has no active tenant")
	ErrTenantNotActive     = errors.New("tenant is not active")
	ErrVersionMismatch     = errors.New("record version mismatch")
)

// ValidationError reports malformed input. Nothing is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e ValidationError) Unwrap() error { return ErrValidation }

// ConflictError reports a precondition that current state violates.
type ConflictError struct {
	Reason   error
	Entity   EntityType
	EntityID string
	Message  string
}

func (e ConflictError) Error() string {
	msg := e.Message
	if msg == "" && e.Reason != nil {
		msg = e.Reason.Error()
	}
	if e.EntityID != "" {
		return fmt.Sprintf("%s %s: %s", e.Entity, e.EntityID, msg)
	}
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s", e.Entity, msg)
	}
	return msg
}

func (e ConflictError) Unwrap() error { return e.Reason }

// ErrNotFound is returned when a referenced record does not exist.
type ErrNotFound struct {
	Entity EntityType
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// IsNotFound reports whether err wraps an ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

// IsConflict reports whether err wraps a ConflictError.
func IsConflict(err error) bool {
	var ce ConflictError
	return errors.As(err, &ce)
}
