// Package types defines the runtime representation of the values manipulated
// by the machine: the four IPPcode23 kinds (int, string, bool, nil) and the
// marker for declared but never assigned variables. It also decodes source
// literals into values.
package types

// Value is the interface implemented by any value manipulated by the machine.
type Value interface {
	// String returns the string representation of the value.
	String() string

	// Type returns a short string describing the value's type.
	Type() string
}

// An Ordered type is a type whose values are ordered: if x and y are of the
// same Ordered type, then x must be less than y, greater than y, or equal to
// y.
type Ordered interface {
	Value

	// Cmp compares two values x and y of the same ordered type. It returns
	// negative if x < y, positive if x > y, and zero if the values are equal.
	// It panics if y is of a different type; callers check the kinds first.
	Cmp(y Value) int
}
