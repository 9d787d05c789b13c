package meerkat

import (
	"github.com/shalevy1/meerkat/errors"
	"github.com/shalevy1/meerkat/internal"
)

// Triggerf builds a recoverable trigger failure. A reactive node
// returning one aborts the current cycle: no further nodes execute,
// and the cycle's result carries the message with an empty
// modification list instead of the error propagating to the caller
// of Set.
func Triggerf(format string, args ...any) error {
	return errors.Errorf("trigger", errors.Trigger, format, args...)
}

// IsTriggerError tells whether err is a recoverable trigger failure.
func IsTriggerError(err error) bool {
	return errors.Is(errors.Trigger, err)
}

// SetTransport registers the consumer that receives each completed
// cycle's result on the calling goroutine's graph. Backend-only
// modifications are filtered out before the handoff.
func SetTransport(fn func(*Result)) {
	internal.GetRuntime().SetTransport(fn)
}

// Dispatch runs an endpoint function against the calling goroutine's
// graph, folding the modifications of every store mutation it makes
// into one result. A trigger failure is absorbed: the result carries
// the error message and an empty modification list, mirroring what
// the transport receives.
func Dispatch(fn func() (any, error)) *Result {
	return internal.GetRuntime().Capture(fn)
}
