package machine

import (
	"github.com/dolthub/swiss"
	"golang.org/x/exp/slices"

	"github.com/ipp23/interp/lang/types"
)

// A Frame is one variable scope: a mapping from local variable name to its
// current value. A declared variable holds types.Uninit until its first
// assignment.
type Frame struct {
	vars *swiss.Map[string, types.Value]
}

// NewFrame returns an empty frame.
func NewFrame() *Frame {
	return &Frame{vars: swiss.NewMap[string, types.Value](8)}
}

// Declare adds name to the frame in the uninitialized state. It reports
// false if the name is already declared.
func (f *Frame) Declare(name string) bool {
	if f.vars.Has(name) {
		return false
	}
	f.vars.Put(name, types.Uninit)
	return true
}

// Set assigns v to name, declaring it as needed. Callers verify declaration
// when the operation requires it.
func (f *Frame) Set(name string, v types.Value) {
	f.vars.Put(name, v)
}

// Get returns the value of name. It reports false if name is not declared.
func (f *Frame) Get(name string) (types.Value, bool) {
	return f.vars.Get(name)
}

// Has reports whether name is declared in the frame.
func (f *Frame) Has(name string) bool {
	return f.vars.Has(name)
}

// Len returns the number of declared variables.
func (f *Frame) Len() int {
	return f.vars.Count()
}

// Names returns the declared variable names in sorted order.
func (f *Frame) Names() []string {
	names := make([]string, 0, f.vars.Count())
	f.vars.Iter(func(k string, _ types.Value) bool {
		names = append(names, k)
		return false
	})
	slices.Sort(names)
	return names
}
