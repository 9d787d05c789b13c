// Package errors provides the standard error definition used across
// meerkat. Each error is assigned a class (Kind) and the operation
// that produced it, and may wrap an underlying error. The API is
// modeled after upspin.io/errors-style packages: users need import
// only this package for constructing and inspecting errors.
package errors

import (
	goerrors "errors"
	"fmt"
)

// Kind denotes the class of an error. The kind decides both how the
// error renders and where it surfaces: construction-time kinds are
// returned to the direct caller, Trigger errors are absorbed by the
// propagation engine into the cycle result.
type Kind int

const (
	// Other denotes an unclassified error.
	Other Kind = iota
	// Config denotes an invalid graph or operation configuration,
	// detected before any row is touched.
	Config
	// Inference denotes a failure to infer an output type or shape,
	// surfaced at first materialization.
	Inference
	// Topology denotes an unsupported pipeline shape encountered by
	// the distributed materializer.
	Topology
	// Trigger denotes a recoverable failure raised by a reactive
	// node during a trigger cycle.
	Trigger

	maxKind
)

func (k Kind) String() string {
	switch k {
	default:
		return "unknown error"
	case Config:
		return "invalid configuration"
	case Inference:
		return "inference failed"
	case Topology:
		return "unsupported topology"
	case Trigger:
		return "trigger failed"
	}
}

// Error is the concrete error type returned by meerkat operations.
// Errors should be constructed with E or Errorf.
type Error struct {
	// Kind is the error's class.
	Kind Kind
	// Op is a short description of the operation that errored,
	// e.g. "defer" or "materialize".
	Op string
	// Err is the underlying error, if any.
	Err error
}

// E constructs an Error from an operation, a kind, and an underlying
// error.
func E(op string, kind Kind, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf constructs an Error with a formatted message.
func Errorf(op string, kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// New is a convenience re-export of the standard errors.New.
func New(text string) error {
	return goerrors.New(text)
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is tells whether err is an Error of the given kind, unwrapping
// chained errors as needed.
func Is(kind Kind, err error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		err = goerrors.Unwrap(err)
	}
	return false
}
