package types

import "strings"

// String is the type of a string value. Its value is the decoded text, with
// all source escapes already resolved.
type String string

var (
	_ Value   = String("")
	_ Ordered = String("")
)

func (s String) String() string { return string(s) }
func (s String) Type() string   { return "string" }

// Cmp implements lexicographic comparison of two String values, by Unicode
// codepoint.
func (s String) Cmp(v Value) int {
	s2 := v.(String)
	return strings.Compare(string(s), string(s2))
}
