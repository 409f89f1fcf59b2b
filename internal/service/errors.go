package service

import (
	"errors"
	"fmt"

	"github.com/flicky/custorder-api/internal/model"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateKey      = errors.New("duplicate key")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInsufficientStock is the model sentinel, re-exported for callers
	// that only import service.
	ErrInsufficientStock = model.ErrInsufficientStock
)

// NotFoundError names the entity and the lookup key that matched nothing.
type NotFoundError struct {
	Entity string
	Key    string
	Value  any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %v", e.Entity, e.Key, e.Value)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(entity string, id int64) error {
	return &NotFoundError{Entity: entity, Key: "id", Value: id}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
