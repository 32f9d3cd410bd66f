package repository

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrCapacityExceeded   = errors.New("confirmed capacity exceeded")
	ErrMemberCapExceeded  = errors.New("member reservation cap exceeded")
	ErrSlotBelowConfirmed = errors.New("slot below current confirmed total")
)
