// Package status defines the process exit codes of the interpreter and the
// error type that carries them. Every fatal condition maps to exactly one
// code; errors are raised at the deepest detection point and travel unchanged
// to the process boundary.
package status

import "fmt"

// A Code is a process exit code with a defined meaning.
type Code int

const (
	OK           Code = 0  // normal termination
	Usage        Code = 10 // bad command-line arguments
	InputOpen    Code = 11 // cannot open an input file
	XMLSyntax    Code = 31 // malformed XML
	XMLStructure Code = 32 // XML does not describe an IPPcode23 program
	Semantic     Code = 52 // undefined label, variable redefinition
	OperandType  Code = 53 // operand type error
	UndefVar     Code = 54 // access to an undeclared variable
	NoFrame      Code = 55 // local frame stack empty or temporary frame absent
	NoValue      Code = 56 // uninitialized read, empty data or call stack
	OperandValue Code = 57 // bad operand value
	StringOp     Code = 58 // bad string index or codepoint
)

var codeNames = map[Code]string{
	OK:           "ok",
	Usage:        "bad arguments",
	InputOpen:    "cannot open input file",
	XMLSyntax:    "malformed XML",
	XMLStructure: "invalid program structure",
	Semantic:     "semantic error",
	OperandType:  "operand type error",
	UndefVar:     "undefined variable",
	NoFrame:      "missing frame",
	NoValue:      "missing value",
	OperandValue: "bad operand value",
	StringOp:     "string operation error",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("exit code %d", int(c))
}

// Error is a fatal interpreter error bound to its exit code.
type Error struct {
	Code Code
	msg  string
}

// Errorf returns an Error with the provided code and formatted message.
func Errorf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.msg)
}
