package meerkat

import "golang.org/x/exp/constraints"

// Reactive renditions of the boolean operators and small collection
// builtins, for composing conditions over stores without writing a
// node body by hand.

// And derives a store that is true while all inputs are true.
func And(xs ...*Store[bool]) (*Store[bool], error) {
	return Reactive(func() bool {
		for _, x := range xs {
			if !x.Get() {
				return false
			}
		}
		return true
	})
}

// Or derives a store that is true while any input is true.
func Or(xs ...*Store[bool]) (*Store[bool], error) {
	return Reactive(func() bool {
		for _, x := range xs {
			if x.Get() {
				return true
			}
		}
		return false
	})
}

// Not derives a store holding the negation of its input.
func Not(x *Store[bool]) (*Store[bool], error) {
	return Reactive(func() bool {
		return !x.Get()
	})
}

// All derives a store that is true while every element of the
// observed slice is true.
func All(x *Store[[]bool]) (*Store[bool], error) {
	return Reactive(func() bool {
		for _, v := range x.Get() {
			if !v {
				return false
			}
		}
		return true
	})
}

// Any derives a store that is true while at least one element of the
// observed slice is true.
func Any(x *Store[[]bool]) (*Store[bool], error) {
	return Reactive(func() bool {
		for _, v := range x.Get() {
			if v {
				return true
			}
		}
		return false
	})
}

// Len derives a store tracking the length of the observed slice.
func Len[T any](x *Store[[]T]) (*Store[int], error) {
	return Reactive(func() int {
		return len(x.Get())
	})
}

// Sum derives a store tracking the sum of the observed slice.
func Sum[T constraints.Integer | constraints.Float](x *Store[[]T]) (*Store[T], error) {
	return Reactive(func() T {
		var total T
		for _, v := range x.Get() {
			total += v
		}
		return total
	})
}
