package program_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipp23/interp/lang/program"
	"github.com/ipp23/interp/lang/status"
	"github.com/ipp23/interp/lang/types"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>`

func load(t *testing.T, src string) (*program.Program, error) {
	t.Helper()
	return program.Load(strings.NewReader(src))
}

func requireCode(t *testing.T, err error, code status.Code) {
	t.Helper()
	var serr *status.Error
	require.True(t, errors.As(err, &serr), "expected a status error, got %v", err)
	require.Equal(t, code, serr.Code, "error: %v", err)
}

func TestLoadValid(t *testing.T) {
	p, err := load(t, header+`
		<program language="IPPcode23" name="demo" description="d">
			<instruction order="3" opcode="WRITE">
				<arg1 type="string">Hello\032World</arg1>
			</instruction>
			<instruction order="1" opcode="defvar">
				<arg1 type="var">GF@x</arg1>
			</instruction>
			<instruction order="2" opcode="Label">
				<arg1 type="label">here</arg1>
			</instruction>
		</program>`)
	require.NoError(t, err)
	require.Equal(t, 3, p.Len())

	// instructions are sorted by order, independent of document order
	require.Equal(t, program.DEFVAR, p.Instr(0).Op)
	require.Equal(t, program.LABEL, p.Instr(1).Op)
	require.Equal(t, program.WRITE, p.Instr(2).Op)

	i, ok := p.LabelIndex("here")
	require.True(t, ok)
	require.Equal(t, 1, i)
	_, ok = p.LabelIndex("nowhere")
	require.False(t, ok)

	// the string literal is decoded at load time
	arg := p.Instr(2).Args[0]
	require.Equal(t, program.ArgString, arg.Kind)
	require.Equal(t, types.String("Hello World"), arg.Val)
}

func TestLoadArgsByName(t *testing.T) {
	// arg elements are addressed by name, not by document position
	p, err := load(t, header+`
		<program language="IPPcode23">
			<instruction order="1" opcode="MOVE">
				<arg2 type="int">-42</arg2>
				<arg1 type="var">GF@x</arg1>
			</instruction>
		</program>`)
	require.NoError(t, err)
	in := p.Instr(0)
	require.Equal(t, program.ArgVar, in.Args[0].Kind)
	require.Equal(t, "GF@x", in.Args[0].Raw)
	require.Equal(t, types.Int(-42), in.Args[1].Val)
}

func TestLoadSyntaxErrors(t *testing.T) {
	cases := []struct {
		name, src string
	}{
		{"empty", ""},
		{"truncated", header + `<program language="IPPcode23">`},
		{"bad tag", header + `<program language="IPPcode23"><instruction</program>`},
		{"two roots", header + `<program language="IPPcode23"></program><program/>`},
		{"text before root", `garbage<program language="IPPcode23"></program>`},
		{"text after root", header + `<program language="IPPcode23"></program>garbage`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := load(t, c.src)
			requireCode(t, err, status.XMLSyntax)
		})
	}
}

func TestLoadStructureErrors(t *testing.T) {
	cases := []struct {
		name, src string
	}{
		{"wrong root", header + `<prog language="IPPcode23"></prog>`},
		{"missing language", header + `<program></program>`},
		{"wrong language", header + `<program language="IPPcode19"></program>`},
		{"foreign root attr", header + `<program language="IPPcode23" author="x"></program>`},
		{"foreign child", header + `<program language="IPPcode23"><instr order="1" opcode="BREAK"/></program>`},
		{"missing order", header + `<program language="IPPcode23"><instruction opcode="BREAK"/></program>`},
		{"missing opcode", header + `<program language="IPPcode23"><instruction order="1"/></program>`},
		{"order zero", header + `<program language="IPPcode23"><instruction order="0" opcode="BREAK"/></program>`},
		{"negative order", header + `<program language="IPPcode23"><instruction order="-1" opcode="BREAK"/></program>`},
		{"non-integer order", header + `<program language="IPPcode23"><instruction order="x" opcode="BREAK"/></program>`},
		{"duplicate order", header + `<program language="IPPcode23">
			<instruction order="1" opcode="BREAK"/>
			<instruction order="1" opcode="BREAK"/>
		</program>`},
		{"unknown opcode", header + `<program language="IPPcode23"><instruction order="1" opcode="NOPE"/></program>`},
		{"foreign instr attr", header + `<program language="IPPcode23"><instruction order="1" opcode="BREAK" x="y"/></program>`},
		{"missing arg", header + `<program language="IPPcode23"><instruction order="1" opcode="DEFVAR"/></program>`},
		{"extra arg", header + `<program language="IPPcode23"><instruction order="1" opcode="BREAK">
			<arg1 type="int">1</arg1>
		</instruction></program>`},
		{"sparse args", header + `<program language="IPPcode23"><instruction order="1" opcode="MOVE">
			<arg1 type="var">GF@x</arg1>
			<arg3 type="int">1</arg3>
		</instruction></program>`},
		{"foreign arg element", header + `<program language="IPPcode23"><instruction order="1" opcode="DEFVAR">
			<arg1 type="var">GF@x</arg1>
			<arg4 type="int">1</arg4>
		</instruction></program>`},
		{"missing arg type", header + `<program language="IPPcode23"><instruction order="1" opcode="DEFVAR">
			<arg1>GF@x</arg1>
		</instruction></program>`},
		{"invalid arg type", header + `<program language="IPPcode23"><instruction order="1" opcode="DEFVAR">
			<arg1 type="variable">GF@x</arg1>
		</instruction></program>`},
		{"foreign arg attr", header + `<program language="IPPcode23"><instruction order="1" opcode="DEFVAR">
			<arg1 type="var" extra="x">GF@x</arg1>
		</instruction></program>`},
		{"label as destination", header + `<program language="IPPcode23"><instruction order="1" opcode="DEFVAR">
			<arg1 type="label">x</arg1>
		</instruction></program>`},
		{"literal as destination", header + `<program language="IPPcode23"><instruction order="1" opcode="MOVE">
			<arg1 type="int">1</arg1>
			<arg2 type="int">2</arg2>
		</instruction></program>`},
		{"var as label", header + `<program language="IPPcode23"><instruction order="1" opcode="JUMP">
			<arg1 type="var">GF@x</arg1>
		</instruction></program>`},
		{"bad var name", header + `<program language="IPPcode23"><instruction order="1" opcode="DEFVAR">
			<arg1 type="var">XF@x</arg1>
		</instruction></program>`},
		{"var missing at", header + `<program language="IPPcode23"><instruction order="1" opcode="DEFVAR">
			<arg1 type="var">GFx</arg1>
		</instruction></program>`},
		{"bad read type", header + `<program language="IPPcode23"><instruction order="1" opcode="READ">
			<arg1 type="var">GF@x</arg1>
			<arg2 type="type">nil</arg2>
		</instruction></program>`},
		{"bad int literal", header + `<program language="IPPcode23"><instruction order="1" opcode="PUSHS">
			<arg1 type="int">four</arg1>
		</instruction></program>`},
		{"bad nil literal", header + `<program language="IPPcode23"><instruction order="1" opcode="PUSHS">
			<arg1 type="nil">none</arg1>
		</instruction></program>`},
		{"bad string escape", header + `<program language="IPPcode23"><instruction order="1" opcode="PUSHS">
			<arg1 type="string">bad\9x9</arg1>
		</instruction></program>`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := load(t, c.src)
			requireCode(t, err, status.XMLStructure)
		})
	}
}

func TestLoadDuplicateLabel(t *testing.T) {
	_, err := load(t, header+`
		<program language="IPPcode23">
			<instruction order="1" opcode="LABEL"><arg1 type="label">a</arg1></instruction>
			<instruction order="2" opcode="LABEL"><arg1 type="label">a</arg1></instruction>
		</program>`)
	requireCode(t, err, status.Semantic)
}

func TestLoadEmptyProgram(t *testing.T) {
	p, err := load(t, header+`<program language="IPPcode23"></program>`)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestArgKindString(t *testing.T) {
	kinds := []program.ArgKind{program.ArgVar, program.ArgInt, program.ArgBool,
		program.ArgString, program.ArgNil, program.ArgLabel, program.ArgType}
	for _, k := range kinds {
		require.NotEmpty(t, k.String())
	}
	assert.True(t, program.ArgInt.IsLiteral())
	assert.True(t, program.ArgNil.IsLiteral())
	assert.False(t, program.ArgVar.IsLiteral())
	assert.False(t, program.ArgLabel.IsLiteral())
}
