// Package machine implements the virtual machine that executes a loaded
// IPPcode23 program. It holds the three-frame variable model (global, local
// stack, temporary), the data and call stacks, and the per-opcode semantics
// of the instruction set.
package machine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ipp23/interp/lang/program"
	"github.com/ipp23/interp/lang/status"
	"github.com/ipp23/interp/lang/types"
)

// Machine executes a single program to completion.
type Machine struct {
	// Stdout, Stderr and Stdin are the I/O endpoints of the executed program:
	// WRITE output, DPRINT and state-dump output, and READ input. If nil,
	// os.Stdout, os.Stderr and os.Stdin are used, respectively.
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	prog *program.Program

	globals *Frame
	locals  []*Frame
	temp    *Frame

	dataStack []types.Value
	callStack []int

	pc       int
	steps    int // completed instructions
	exitCode int

	in     *bufio.Scanner
	stdout io.Writer
	stderr io.Writer
}

// errHalt stops the run loop without an error (EXIT instruction).
var errHalt = errors.New("halt")

// Run executes p from its first instruction until the end of the instruction
// stream, an EXIT instruction, or a fatal error, which is returned as a
// *status.Error. An EXIT instruction ends the run without an error; its code
// is available from ExitCode. Cancelling ctx stops execution between two
// instructions and returns ctx.Err(). A Machine runs a single program.
func (m *Machine) Run(ctx context.Context, p *program.Program) error {
	if m.prog != nil {
		return fmt.Errorf("machine has already executed a program")
	}
	m.init(p)

	for m.pc < p.Len() {
		if err := ctx.Err(); err != nil {
			return err
		}
		in := p.Instr(m.pc)
		m.pc++
		if err := m.exec(in); err != nil {
			if err == errHalt {
				return nil
			}
			return err
		}
		m.steps++
	}
	return nil
}

// ExitCode returns the code of the EXIT instruction that ended the run, or 0
// if the program ran to the end of its instruction stream.
func (m *Machine) ExitCode() int { return m.exitCode }

func (m *Machine) init(p *program.Program) {
	m.prog = p
	m.globals = NewFrame()
	if m.Stdout != nil {
		m.stdout = m.Stdout
	} else {
		m.stdout = os.Stdout
	}
	if m.Stderr != nil {
		m.stderr = m.Stderr
	} else {
		m.stderr = os.Stderr
	}
	if m.Stdin != nil {
		m.in = bufio.NewScanner(m.Stdin)
	} else {
		m.in = bufio.NewScanner(os.Stdin)
	}
}

func (m *Machine) exec(in *program.Instr) error {
	args := in.Args
	switch in.Op {
	case program.MOVE:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		v, err := m.symbol(args[1])
		if err != nil {
			return err
		}
		f.Set(name, v)

	case program.CREATEFRAME:
		m.temp = NewFrame()

	case program.PUSHFRAME:
		if m.temp == nil {
			return status.Errorf(status.NoFrame, "no temporary frame to push")
		}
		m.locals = append(m.locals, m.temp)
		m.temp = nil

	case program.POPFRAME:
		if len(m.locals) == 0 {
			return status.Errorf(status.NoFrame, "no local frame to pop")
		}
		n := len(m.locals) - 1
		m.temp = m.locals[n]
		m.locals = m.locals[:n]

	case program.DEFVAR:
		f, name, err := m.frame(args[0].Raw)
		if err != nil {
			return err
		}
		if !f.Declare(name) {
			return status.Errorf(status.Semantic, "variable %s redefined", args[0].Raw)
		}

	case program.CALL:
		i, ok := m.prog.LabelIndex(args[0].Raw)
		if !ok {
			return status.Errorf(status.Semantic, "undefined label %s", args[0].Raw)
		}
		m.callStack = append(m.callStack, m.pc)
		m.pc = i

	case program.RETURN:
		if len(m.callStack) == 0 {
			return status.Errorf(status.NoValue, "return with an empty call stack")
		}
		n := len(m.callStack) - 1
		m.pc = m.callStack[n]
		m.callStack = m.callStack[:n]

	case program.PUSHS:
		v, err := m.symbol(args[0])
		if err != nil {
			return err
		}
		m.dataStack = append(m.dataStack, v)

	case program.POPS:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		if len(m.dataStack) == 0 {
			return status.Errorf(status.NoValue, "pop from an empty data stack")
		}
		n := len(m.dataStack) - 1
		f.Set(name, m.dataStack[n])
		m.dataStack = m.dataStack[:n]

	case program.ADD, program.SUB, program.MUL, program.IDIV:
		f, name, x, y, err := m.mathOperands(args)
		if err != nil {
			return err
		}
		var z types.Int
		switch in.Op {
		case program.ADD:
			z = x + y
		case program.SUB:
			z = x - y
		case program.MUL:
			z = x * y
		case program.IDIV:
			if y == 0 {
				return status.Errorf(status.OperandValue, "division by zero")
			}
			z = floorDiv(x, y)
		}
		f.Set(name, z)

	case program.LT, program.GT:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		x, y, err := m.pair(args[1], args[2])
		if err != nil {
			return err
		}
		cmp, err := orderValues(x, y)
		if err != nil {
			return err
		}
		if in.Op == program.LT {
			f.Set(name, types.Bool(cmp < 0))
		} else {
			f.Set(name, types.Bool(cmp > 0))
		}

	case program.EQ:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		x, y, err := m.pair(args[1], args[2])
		if err != nil {
			return err
		}
		eq, err := equalValues(x, y)
		if err != nil {
			return err
		}
		f.Set(name, types.Bool(eq))

	case program.AND, program.OR:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		x, y, err := m.pair(args[1], args[2])
		if err != nil {
			return err
		}
		bx, ok1 := x.(types.Bool)
		by, ok2 := y.(types.Bool)
		if !ok1 || !ok2 {
			return status.Errorf(status.OperandType, "%s requires bool operands, got %s and %s", in.Op, typeName(x), typeName(y))
		}
		if in.Op == program.AND {
			f.Set(name, bx && by)
		} else {
			f.Set(name, bx || by)
		}

	case program.NOT:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		v, err := m.symbol(args[1])
		if err != nil {
			return err
		}
		b, ok := v.(types.Bool)
		if !ok {
			return status.Errorf(status.OperandType, "NOT requires a bool operand, got %s", typeName(v))
		}
		f.Set(name, !b)

	case program.INT2CHAR:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		v, err := m.symbol(args[1])
		if err != nil {
			return err
		}
		i, ok := v.(types.Int)
		if !ok {
			return status.Errorf(status.OperandType, "INT2CHAR requires an int operand, got %s", typeName(v))
		}
		if i < 0 || i > utf8.MaxRune || !utf8.ValidRune(rune(i)) {
			return status.Errorf(status.StringOp, "invalid codepoint %d", i)
		}
		f.Set(name, types.String(rune(i)))

	case program.STRI2INT:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		r, err := m.charAt(args[1], args[2])
		if err != nil {
			return err
		}
		f.Set(name, types.Int(r))

	case program.READ:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		f.Set(name, m.read(args[1].Raw))

	case program.WRITE:
		v, err := m.symbol(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(m.stdout, render(v))

	case program.DPRINT:
		v, err := m.symbol(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(m.stderr, render(v))

	case program.CONCAT:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		x, y, err := m.pair(args[1], args[2])
		if err != nil {
			return err
		}
		sx, ok1 := x.(types.String)
		sy, ok2 := y.(types.String)
		if !ok1 || !ok2 {
			return status.Errorf(status.OperandType, "CONCAT requires string operands, got %s and %s", typeName(x), typeName(y))
		}
		f.Set(name, sx+sy)

	case program.STRLEN:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		v, err := m.symbol(args[1])
		if err != nil {
			return err
		}
		s, ok := v.(types.String)
		if !ok {
			return status.Errorf(status.OperandType, "STRLEN requires a string operand, got %s", typeName(v))
		}
		f.Set(name, types.Int(utf8.RuneCountInString(string(s))))

	case program.GETCHAR:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		r, err := m.charAt(args[1], args[2])
		if err != nil {
			return err
		}
		f.Set(name, types.String(r))

	case program.SETCHAR:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		v, err := m.symbol(args[0])
		if err != nil {
			return err
		}
		s, ok := v.(types.String)
		if !ok {
			return status.Errorf(status.OperandType, "SETCHAR requires a string destination, got %s", typeName(v))
		}
		iv, err := m.symbol(args[1])
		if err != nil {
			return err
		}
		idx, ok := iv.(types.Int)
		if !ok {
			return status.Errorf(status.OperandType, "SETCHAR requires an int index, got %s", typeName(iv))
		}
		rv, err := m.symbol(args[2])
		if err != nil {
			return err
		}
		repl, ok := rv.(types.String)
		if !ok {
			return status.Errorf(status.OperandType, "SETCHAR requires a string replacement, got %s", typeName(rv))
		}
		if repl == "" {
			return status.Errorf(status.StringOp, "empty replacement string")
		}
		runes := []rune(string(s))
		if idx < 0 || int64(idx) >= int64(len(runes)) {
			return status.Errorf(status.StringOp, "index %d out of range for string of length %d", idx, len(runes))
		}
		runes[idx] = []rune(string(repl))[0]
		f.Set(name, types.String(runes))

	case program.TYPE:
		f, name, err := m.target(args[0])
		if err != nil {
			return err
		}
		t, err := m.typeOf(args[1])
		if err != nil {
			return err
		}
		f.Set(name, types.String(t))

	case program.LABEL:
		// labels are indexed at load time

	case program.JUMP:
		i, ok := m.prog.LabelIndex(args[0].Raw)
		if !ok {
			return status.Errorf(status.Semantic, "undefined label %s", args[0].Raw)
		}
		m.pc = i

	case program.JUMPIFEQ, program.JUMPIFNEQ:
		i, ok := m.prog.LabelIndex(args[0].Raw)
		if !ok {
			return status.Errorf(status.Semantic, "undefined label %s", args[0].Raw)
		}
		x, y, err := m.pair(args[1], args[2])
		if err != nil {
			return err
		}
		eq, err := equalValues(x, y)
		if err != nil {
			return err
		}
		if eq == (in.Op == program.JUMPIFEQ) {
			m.pc = i
		}

	case program.EXIT:
		v, err := m.symbol(args[0])
		if err != nil {
			return err
		}
		n, ok := v.(types.Int)
		if !ok {
			return status.Errorf(status.OperandType, "EXIT requires an int operand, got %s", typeName(v))
		}
		if n < 0 || n > 49 {
			return status.Errorf(status.OperandValue, "exit code %d out of range", n)
		}
		m.exitCode = int(n)
		return errHalt

	case program.BREAK:
		m.dump(in.Order)

	default:
		panic(fmt.Sprintf("unimplemented: %s", in.Op))
	}
	return nil
}

// frame resolves the frame part of a qualified variable name. The loader
// guarantees the GF|LF|TF@name shape.
func (m *Machine) frame(qualified string) (*Frame, string, error) {
	name := qualified[3:]
	switch qualified[:2] {
	case "GF":
		return m.globals, name, nil
	case "LF":
		if len(m.locals) == 0 {
			return nil, "", status.Errorf(status.NoFrame, "local frame stack is empty")
		}
		return m.locals[len(m.locals)-1], name, nil
	default: // TF
		if m.temp == nil {
			return nil, "", status.Errorf(status.NoFrame, "no temporary frame")
		}
		return m.temp, name, nil
	}
}

// target resolves a destination variable argument, verifying that it is
// declared.
func (m *Machine) target(a program.Arg) (*Frame, string, error) {
	f, name, err := m.frame(a.Raw)
	if err != nil {
		return nil, "", err
	}
	if !f.Has(name) {
		return nil, "", status.Errorf(status.UndefVar, "undefined variable %s", a.Raw)
	}
	return f, name, nil
}

// symbol resolves a symbol argument to its value: the current value of a
// declared, initialized variable, or a literal's decoded value.
func (m *Machine) symbol(a program.Arg) (types.Value, error) {
	if a.Kind != program.ArgVar {
		return a.Val, nil
	}
	f, name, err := m.frame(a.Raw)
	if err != nil {
		return nil, err
	}
	v, ok := f.Get(name)
	if !ok {
		return nil, status.Errorf(status.UndefVar, "undefined variable %s", a.Raw)
	}
	if v == types.Uninit {
		return nil, status.Errorf(status.NoValue, "variable %s has no value", a.Raw)
	}
	return v, nil
}

// pair resolves two symbol arguments.
func (m *Machine) pair(a1, a2 program.Arg) (x, y types.Value, err error) {
	if x, err = m.symbol(a1); err != nil {
		return nil, nil, err
	}
	if y, err = m.symbol(a2); err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// mathOperands resolves the destination and the two int operands of an
// arithmetic instruction.
func (m *Machine) mathOperands(args []program.Arg) (f *Frame, name string, x, y types.Int, err error) {
	f, name, err = m.target(args[0])
	if err != nil {
		return nil, "", 0, 0, err
	}
	vx, vy, err := m.pair(args[1], args[2])
	if err != nil {
		return nil, "", 0, 0, err
	}
	x, ok1 := vx.(types.Int)
	y, ok2 := vy.(types.Int)
	if !ok1 || !ok2 {
		return nil, "", 0, 0, status.Errorf(status.OperandType, "arithmetic requires int operands, got %s and %s", typeName(vx), typeName(vy))
	}
	return f, name, x, y, nil
}

// charAt resolves a string symbol and an index symbol to the codepoint at
// that index.
func (m *Machine) charAt(sArg, iArg program.Arg) (rune, error) {
	x, y, err := m.pair(sArg, iArg)
	if err != nil {
		return 0, err
	}
	s, ok1 := x.(types.String)
	idx, ok2 := y.(types.Int)
	if !ok1 || !ok2 {
		return 0, status.Errorf(status.OperandType, "indexing requires a string and an int, got %s and %s", typeName(x), typeName(y))
	}
	runes := []rune(string(s))
	if idx < 0 || int64(idx) >= int64(len(runes)) {
		return 0, status.Errorf(status.StringOp, "index %d out of range for string of length %d", idx, len(runes))
	}
	return runes[idx], nil
}

// typeOf resolves a symbol for the TYPE instruction: a declared variable may
// be uninitialized, in which case its type name is the empty string.
func (m *Machine) typeOf(a program.Arg) (string, error) {
	if a.Kind != program.ArgVar {
		return a.Val.Type(), nil
	}
	f, name, err := m.frame(a.Raw)
	if err != nil {
		return "", err
	}
	v, ok := f.Get(name)
	if !ok {
		return "", status.Errorf(status.UndefVar, "undefined variable %s", a.Raw)
	}
	return v.Type(), nil
}

// read consumes one input line and decodes it to the requested type. A
// failed read or decode yields nil, not an error.
func (m *Machine) read(typ string) types.Value {
	if !m.in.Scan() {
		return types.Nil
	}
	line := m.in.Text()
	switch typ {
	case "int":
		i, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if err != nil {
			return types.Nil
		}
		return types.Int(i)
	case "bool":
		return types.Bool(strings.EqualFold(line, "true"))
	default: // string
		return types.String(line)
	}
}

// equalValues implements the equality of EQ, JUMPIFEQ and JUMPIFNEQ: nil is
// equal only to nil, and values of the same kind compare by value. Two
// initialized operands of different non-nil kinds cannot be compared.
func equalValues(x, y types.Value) (bool, error) {
	if x == types.Nil || y == types.Nil {
		return x == y, nil
	}
	if x.Type() != y.Type() {
		return false, status.Errorf(status.OperandType, "cannot compare %s with %s", typeName(x), typeName(y))
	}
	return x == y, nil
}

// orderValues implements the ordering of LT and GT. Only int, string and
// bool operands of the same kind are ordered; nil is not orderable.
func orderValues(x, y types.Value) (int, error) {
	if x.Type() != y.Type() {
		return 0, status.Errorf(status.OperandType, "cannot compare %s with %s", typeName(x), typeName(y))
	}
	xo, ok := x.(types.Ordered)
	if !ok {
		return 0, status.Errorf(status.OperandType, "%s values are not orderable", typeName(x))
	}
	return xo.Cmp(y), nil
}

// floorDiv divides x by y rounding toward negative infinity.
func floorDiv(x, y types.Int) types.Int {
	q := x / y
	if x%y != 0 && (x < 0) != (y < 0) {
		q--
	}
	return q
}

// render returns the textual form of a value for WRITE and DPRINT: nil
// renders as the empty string.
func render(v types.Value) string {
	if v == types.Nil {
		return ""
	}
	return v.String()
}

// typeName names a value's kind in error messages.
func typeName(v types.Value) string {
	if t := v.Type(); t != "" {
		return t
	}
	return "uninitialized"
}
