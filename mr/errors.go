package mr

import "errors"

const Namespace = "mr"

var (
	// ErrParse marks a data error found while processing a record. Mappers wrap it to have
	// the record counted as a parse error instead of failing the input.
	ErrParse = errors.New(Namespace + ": parse error")

	ErrInvalidFileSpec = errors.New(Namespace + ": invalid file spec")
	ErrInvalidConfig   = errors.New(Namespace + ": invalid configuration")
	ErrFlush           = errors.New(Namespace + ": flushing worker output failed")
)
