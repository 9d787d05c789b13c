package column

import (
	"reflect"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/shalevy1/meerkat/errors"
)

// NewScalar picks a concrete backend for the given data. The backend
// is resolved exactly once, here: Go slices become slice-backed
// columns, Arrow arrays become Arrow-backed columns, []any becomes an
// ObjectColumn, and an existing Column is returned as is. Anything
// else is a configuration error.
func NewScalar(data any) (Column, error) {
	switch d := data.(type) {
	case Column:
		return d, nil
	case arrow.Array:
		return FromArrow(d), nil
	case []any:
		return NewObject(d), nil
	}

	rv := reflect.ValueOf(data)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, errors.Errorf("column.NewScalar", errors.Config,
			"cannot create a column from %T", data)
	}

	var probe any
	if rv.Len() > 0 {
		probe = rv.Index(0).Interface()
	} else {
		probe = reflect.Zero(rv.Type().Elem()).Interface()
	}

	return &sliceColumn{values: rv, typ: TypeOf(probe)}, nil
}
