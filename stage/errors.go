package stage

import "errors"

const Namespace = "stage"

var (
	ErrInvalidConfig  = errors.New(Namespace + ": invalid configuration")
	ErrInvalidState   = errors.New(Namespace + ": stage already ran")
	ErrInputPanicked  = errors.New(Namespace + ": mapper panicked")
	ErrInputCancelled = errors.New(Namespace + ": input cancelled")
	ErrRead           = errors.New(Namespace + ": reading input failed")
)
