package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationErrorUnwrapsSentinel(t *testing.T) {
	err := fmt.Errorf("admit: %w", ValidationError{Field: "name", Message: "required"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation match")
	}
	var ve ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Fatalf("expected ValidationError with field, got %v", err)
	}
	if (ValidationError{Message: "bad"}).Error() != "bad" {
		t.Fatalf("expected bare message without field")
	}
}

func TestConflictErrorReason(t *testing.T) {
	err := ConflictError{Reason: ErrUnitOccupied, Entity: EntityUnit, EntityID: "u1"}
	if !errors.Is(err, ErrUnitOccupied) {
		t.Fatalf("expected reason match")
	}
	if errors.Is(err, ErrDuplicateName) {
		t.Fatalf("unexpected reason match")
	}
	if err.Error() != "unit u1: unit already has an active tenant" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !IsConflict(fmt.Errorf("wrapped: %w", err)) {
		t.Fatalf("expected IsConflict")
	}
	named := ConflictError{Reason: ErrDuplicateName, Entity: EntityBuilding, Message: "name taken"}
	if named.Error() != "building: name taken" {
		t.Fatalf("unexpected message %q", named.Error())
	}
}

func TestErrNotFound(t *testing.T) {
	err := fmt.Errorf("lookup: %w", ErrNotFound{Entity: EntityTenant, ID: "t9"})
	if !IsNotFound(err) {
		t.Fatalf("expected not found")
	}
	if IsNotFound(errors.New("other")) {
		t.Fatalf("unexpected not found")
	}
}
