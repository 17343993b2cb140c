package tclbind

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tclbind/tclbind/tclc"
)

// RuntimeError reports a non-OK completion code from the embedded
// evaluator. Msg carries the runtime's result text verbatim.
type RuntimeError struct {
	Code tclc.Result
	Msg  string
}

func (e *RuntimeError) Error() string { return e.Msg }

// ConversionError reports a scalar extraction or construction against an
// incompatible representation, for example integer extraction from a
// non-integral float.
type ConversionError struct {
	Msg string
}

func (e *ConversionError) Error() string { return e.Msg }

// SharedObjectError reports a write attempted through a handle whose
// object is shared. The caller must duplicate first; the bridge never
// copies on its own.
type SharedObjectError struct {
	Op string
}

func (e *SharedObjectError) Error() string {
	return "cannot " + e.Op + " a shared object"
}

// UnsupportedTypeError reports a host value with no defined interpreter
// representation. The mapping is a closed set, not an extensible dispatch.
type UnsupportedTypeError struct {
	Value any
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("no interpreter representation for host type %T", e.Value)
}

// ListAppendError reports a failed list append, typically because the
// target object's representation cannot be grown in place. When the cause
// was a copy-on-write refusal, Err holds the SharedObjectError.
type ListAppendError struct {
	Msg string
	Err error
}

func (e *ListAppendError) Error() string { return e.Msg }

func (e *ListAppendError) Unwrap() error { return e.Err }

// callbackErrorPrefix marks an error text produced by a host callback
// failing, as opposed to an ordinary script error.
const callbackErrorPrefix = "command raised an exception: "

// IsCallbackFailure reports whether err is a RuntimeError produced by a
// registered host callback panicking during invocation.
func IsCallbackFailure(err error) bool {
	var re *RuntimeError
	if !errors.As(err, &re) {
		return false
	}
	return strings.HasPrefix(re.Msg, callbackErrorPrefix)
}
