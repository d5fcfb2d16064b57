package input

import "errors"

const Namespace = "input"

var (
	ErrInvalidSpec        = errors.New(Namespace + ": invalid input specification")
	ErrInvalidConfig      = errors.New(Namespace + ": invalid configuration")
	ErrOpen               = errors.New(Namespace + ": cannot open input")
	ErrUnsupportedScheme  = errors.New(Namespace + ": unsupported url scheme")
	ErrUnexpectedHTTPCode = errors.New(Namespace + ": unexpected http status")
)
