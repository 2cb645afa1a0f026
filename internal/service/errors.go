package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel categories for errors.Is dispatch in handlers. Concrete error
// types below unwrap to one of these so the HTTP layer can pick a status
// code without knowing every type.
var (
	// ErrValidation marks structural violations detected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing referenced owner, product type, material,
	// or target node.
	ErrNotFound = errors.New("not found")
	// ErrConflict marks rare commit-time integrity conflicts.
	ErrConflict = errors.New("conflict")
)

// CycleError reports a node that appears twice along one ancestry path,
// either inside a candidate tree or between the candidate and the stored
// ancestor chain of its graft point.
type CycleError struct {
	NodeID uuid.UUID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("node %s is its own ancestor", e.NodeID)
}

func (e *CycleError) Unwrap() error { return ErrValidation }

// CompositionError reports a node violating the non-empty composition rule
// or the root/child amount_in_parent rule.
type CompositionError struct {
	NodeName string
	Reason   string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("node %q: %s", e.NodeName, e.Reason)
}

func (e *CompositionError) Unwrap() error { return ErrValidation }

// IncompleteBomError reports a leaf node (no components) with an empty bill
// of materials anywhere in a candidate tree.
type IncompleteBomError struct {
	NodeName string
}

func (e *IncompleteBomError) Error() string {
	return fmt.Sprintf("leaf node %q has no bill of materials", e.NodeName)
}

func (e *IncompleteBomError) Unwrap() error { return ErrValidation }

// NotFoundError reports one or more missing referenced rows.
type NotFoundError struct {
	Resource string
	IDs      []uuid.UUID
}

func (e *NotFoundError) Error() string {
	if len(e.IDs) == 1 {
		return fmt.Sprintf("%s %s not found", e.Resource, e.IDs[0])
	}
	return fmt.Sprintf("%d %ss not found: %v", len(e.IDs), e.Resource, e.IDs)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// IntegrityError wraps a commit-time conflict (e.g. a concurrent duplicate).
// Never retried by the core; surfaced to the caller as a conflict.
type IntegrityError struct {
	Op  string
	Err error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: integrity conflict: %v", e.Op, e.Err)
}

func (e *IntegrityError) Unwrap() error { return ErrConflict }

// UnitMismatchError reports two BOM lines for the same material expressed in
// different units. The aggregator rejects the roll-up instead of silently
// summing incomparable quantities; unit conversion is out of scope.
type UnitMismatchError struct {
	MaterialID uuid.UUID
	UnitA      string
	UnitB      string
}

func (e *UnitMismatchError) Error() string {
	return fmt.Sprintf("material %s appears in mixed units %q and %q", e.MaterialID, e.UnitA, e.UnitB)
}

func (e *UnitMismatchError) Unwrap() error { return ErrValidation }

// InvariantViolationError reports corruption in already-persisted data (a
// cycle, or a child without a multiplier) detected while reading. It is
// defensive only: construction-time validation should make it unreachable.
// Always logged and fatal for the request, never caller-recoverable.
type InvariantViolationError struct {
	NodeID uuid.UUID
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("stored tree invariant violated at node %s: %s", e.NodeID, e.Detail)
}
