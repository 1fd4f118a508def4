package repository

import "errors"

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrDuplicateActiveOrder = errors.New("duplicate active order")
	ErrInventoryExhausted   = errors.New("inventory exhausted")
	ErrCapacityViolation    = errors.New("capacity violation")
	ErrResourceInUse        = errors.New("resource in use")
)
