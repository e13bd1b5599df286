package service

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports that the target entity row does not exist or is
// soft-deleted.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// PersistenceError reports a write that unexpectedly affected zero rows,
// typically a race with a concurrent delete. Distinct from NotFoundError: the
// row was observed before the write started.
type PersistenceError struct {
	Entity string
	ID     int64
	Op     string
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s %d affected no rows", e.Op, e.Entity, e.ID)
}

// ValidationError reports a payload rejected before reaching persistence.
type ValidationError struct {
	Entity string
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s payload: %s", e.Entity, strings.Join(e.Issues, "; "))
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
