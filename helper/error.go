package helper

import (
	"errors"
	"fmt"
	"strings"
)

// Error is an error with a trace of the operations it passed through.
type Error struct {
	Original error
	Trace    []string
}

// NewError wraps err with the operation trace. If err already is an Error
// the trace is appended instead of nesting a new Error.
func NewError(trace string, original error) error {
	var e Error
	if errors.As(original, &e) {
		trace := append(append([]string{}, e.Trace...), trace)
		return Error{Original: e.Original, Trace: trace}
	}
	return Error{Original: original, Trace: []string{trace}}
}

func (e Error) Error() string {
	return fmt.Sprintf("%v | Trace: %s", e.Original, strings.Join(e.Trace, ", "))
}

func (e Error) Unwrap() error {
	return e.Original
}
