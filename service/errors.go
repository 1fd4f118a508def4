package service

import (
	"errors"
	"fmt"
)

var (
	ErrFailedValidation     = errors.New("failed validation")
	ErrRecordNotFound       = errors.New("record not found")
	ErrNotPermitted         = errors.New("not permitted")
	ErrBadRequest           = errors.New("bad request")
	ErrContentTooLarge      = errors.New("content too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrInvalidCapacity is returned when a book is created or updated with a
	// negative copy count or with more available than total copies.
	ErrInvalidCapacity = errors.New("invalid capacity")

	// ErrCapacityViolation is returned when an admin tries to reduce a book's
	// total copies below the number currently out on loan.
	ErrCapacityViolation = errors.New("capacity violation")

	// ErrResourceInUse is returned when deleting a book that still has orders
	// in a non-terminal status.
	ErrResourceInUse = errors.New("resource in use")

	// ErrDuplicateActiveOrder is returned when a student already has a
	// non-terminal order for the same book.
	ErrDuplicateActiveOrder = errors.New("duplicate active order")

	// ErrInvalidStateTransition is returned for any status edge outside the
	// transition table, including every edge out of a terminal status.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrInventoryExhausted is returned when a borrow is attempted with no
	// copies left on the shelf. The order stays APPROVED.
	ErrInventoryExhausted = errors.New("inventory exhausted")

	// ErrConcurrentModification is returned after the bounded internal retry
	// of a conflicting transition is used up. The caller may retry.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrTimeout is returned when the atomic section could not be completed
	// within its deadline. The caller may retry.
	ErrTimeout = errors.New("timeout")
)

// failedValidation wraps ErrFailedValidation with the key/value detail of a
// validation error map, so handlers can match on errors.Is and still show
// the field that failed.
func failedValidation(errorMap map[string]string) error {
	err := ErrFailedValidation
	for k, v := range errorMap {
		err = fmt.Errorf("%w: %q %s", ErrFailedValidation, k, v)
	}
	return err
}
