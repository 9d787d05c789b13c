package meerkat

import (
	"context"

	"github.com/shalevy1/meerkat/deferred"
)

// Defer builds a deferred column or frame that lazily applies
// function to each row of data. See the deferred package for the
// binding and output-shape rules and the available options.
func Defer(data, function any, opts ...deferred.Option) (deferred.Deferred, error) {
	return deferred.Defer(data, function, opts...)
}

// Map applies function to each row of data and materializes the
// result: the composition of Defer and deferred.Materialize.
func Map(ctx context.Context, data, function any, opts ...deferred.Option) (any, error) {
	return deferred.Map(ctx, data, function, opts...)
}
