package stage

import (
	"errors"
	"fmt"
)

// InputMetaError exposes which input of a stage an error belongs to.
type InputMetaError interface {
	error
	Unwrap() error
	InputIndex() (int, bool)
	InputURL() (string, bool)
}

type inputTaggedError struct {
	err   error
	index int
	url   string
}

func newInputTaggedError(err error, index int, url string) error {
	if err == nil {
		return nil
	}
	return &inputTaggedError{err: err, index: index, url: url}
}

func (e *inputTaggedError) Error() string {
	return fmt.Sprintf("input %d (%s): %s", e.index, e.url, e.err.Error())
}

func (e *inputTaggedError) Unwrap() error { return e.err }

func (e *inputTaggedError) InputIndex() (int, bool) { return e.index, true }

func (e *inputTaggedError) InputURL() (string, bool) { return e.url, e.url != "" }

func (e *inputTaggedError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "input(index=%d,url=%s): %+v", e.index, e.url, e.err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractInputIndex returns the index of the failed input if err carries one.
func ExtractInputIndex(err error) (int, bool) {
	var ime InputMetaError
	if errors.As(err, &ime) {
		return ime.InputIndex()
	}
	return 0, false
}

// ExtractInputURL returns the URL of the failed input if err carries one.
func ExtractInputURL(err error) (string, bool) {
	var ime InputMetaError
	if errors.As(err, &ime) {
		return ime.InputURL()
	}
	return "", false
}

// InputErrors splits an error returned by Run into the errors of individual inputs.
func InputErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
