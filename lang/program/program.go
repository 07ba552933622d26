// Package program loads the XML form of an IPPcode23 program and validates
// it into the executable representation consumed by the machine: an
// instruction list sorted by the order attribute, with literal arguments
// decoded to values and labels resolved to instruction indices.
package program

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/ipp23/interp/lang/status"
	"github.com/ipp23/interp/lang/types"
)

// ArgKind is the kind of an instruction argument, per its type attribute.
type ArgKind uint8

const (
	ArgVar ArgKind = iota
	ArgInt
	ArgBool
	ArgString
	ArgNil
	ArgLabel
	ArgType
)

var argKindNames = [...]string{"var", "int", "bool", "string", "nil", "label", "type"}

func (k ArgKind) String() string { return argKindNames[k] }

func lookupArgKind(s string) (ArgKind, bool) {
	for i, n := range argKindNames {
		if n == s {
			return ArgKind(i), true
		}
	}
	return 0, false
}

// IsLiteral reports whether the argument kind denotes a literal value.
func (k ArgKind) IsLiteral() bool { return k >= ArgInt && k <= ArgNil }

// Arg is one instruction argument. For literal kinds, Val holds the decoded
// value; for var, label and type arguments it is nil and Raw carries the
// payload.
type Arg struct {
	Kind ArgKind
	Raw  string
	Val  types.Value
}

// Instr is one instruction: its source order, opcode and arguments.
type Instr struct {
	Order int
	Op    Opcode
	Args  []Arg
}

// Program is the validated, executable form of an IPPcode23 document.
type Program struct {
	instrs []Instr
	labels map[string]int
}

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.instrs) }

// Instr returns the instruction at index i of the order-sorted list.
func (p *Program) Instr(i int) *Instr { return &p.instrs[i] }

// LabelIndex returns the instruction index of the named label. It reports
// false if the label is not defined.
func (p *Program) LabelIndex(name string) (int, bool) {
	i, ok := p.labels[name]
	return i, ok
}

// XML shapes. Attributes and unexpected children are captured wholesale so
// that foreign ones can be rejected.
type xmlProgram struct {
	Attrs  []xml.Attr `xml:",any,attr"`
	Instrs []xmlInstr `xml:"instruction"`
	Extra  []xmlExtra `xml:",any"`
}

type xmlInstr struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Arg1  *xmlArg    `xml:"arg1"`
	Arg2  *xmlArg    `xml:"arg2"`
	Arg3  *xmlArg    `xml:"arg3"`
	Extra []xmlExtra `xml:",any"`
}

type xmlArg struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Body  string     `xml:",chardata"`
}

type xmlExtra struct {
	XMLName xml.Name
}

// Load parses and validates an IPPcode23 XML document. Malformed XML reports
// status.XMLSyntax; a well-formed document that does not describe an
// IPPcode23 program reports status.XMLStructure; a duplicate label reports
// status.Semantic.
func Load(r io.Reader) (*Program, error) {
	dec := xml.NewDecoder(r)

	root, err := rootElement(dec)
	if err != nil {
		return nil, err
	}
	if root.Name.Local != "program" || root.Name.Space != "" {
		return nil, status.Errorf(status.XMLStructure, "root element must be program, not %s", root.Name.Local)
	}

	var doc xmlProgram
	if err := dec.DecodeElement(&doc, root); err != nil {
		return nil, status.Errorf(status.XMLSyntax, "%s", err)
	}
	if err := trailing(dec); err != nil {
		return nil, err
	}

	if err := checkRootAttrs(doc.Attrs); err != nil {
		return nil, err
	}
	if len(doc.Extra) > 0 {
		return nil, status.Errorf(status.XMLStructure, "unexpected element %s", doc.Extra[0].XMLName.Local)
	}

	p := &Program{labels: make(map[string]int)}
	p.instrs = make([]Instr, 0, len(doc.Instrs))
	orders := make(map[int]bool, len(doc.Instrs))
	for _, xi := range doc.Instrs {
		in, err := makeInstr(&xi)
		if err != nil {
			return nil, err
		}
		if orders[in.Order] {
			return nil, status.Errorf(status.XMLStructure, "duplicate order %d", in.Order)
		}
		orders[in.Order] = true
		p.instrs = append(p.instrs, in)
	}

	slices.SortFunc(p.instrs, func(a, b Instr) int { return a.Order - b.Order })

	for i, in := range p.instrs {
		if in.Op != LABEL {
			continue
		}
		name := in.Args[0].Raw
		if _, ok := p.labels[name]; ok {
			return nil, status.Errorf(status.Semantic, "duplicate label %s", name)
		}
		p.labels[name] = i
	}
	return p, nil
}

// rootElement skips prologue tokens up to the document's root element.
func rootElement(dec *xml.Decoder) (*xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, status.Errorf(status.XMLSyntax, "%s", err)
		}
		switch tok := tok.(type) {
		case xml.StartElement:
			return &tok, nil
		case xml.CharData:
			if len(strings.TrimSpace(string(tok))) > 0 {
				return nil, status.Errorf(status.XMLSyntax, "text outside of root element")
			}
		case xml.Comment, xml.ProcInst, xml.Directive:
			// prologue, skip
		}
	}
}

// trailing verifies that nothing but whitespace and comments follows the
// root element.
func trailing(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return status.Errorf(status.XMLSyntax, "%s", err)
		}
		switch tok := tok.(type) {
		case xml.CharData:
			if len(strings.TrimSpace(string(tok))) > 0 {
				return status.Errorf(status.XMLSyntax, "text after root element")
			}
		case xml.Comment, xml.ProcInst:
			// epilogue, skip
		default:
			return status.Errorf(status.XMLSyntax, "content after root element")
		}
	}
}

func checkRootAttrs(attrs []xml.Attr) error {
	var language string
	for _, a := range attrs {
		switch a.Name.Local {
		case "language":
			language = a.Value
		case "name", "description":
			// allowed, ignored
		default:
			return status.Errorf(status.XMLStructure, "invalid program attribute %s", a.Name.Local)
		}
	}
	if language != "IPPcode23" {
		return status.Errorf(status.XMLStructure, "language attribute must be IPPcode23, not %q", language)
	}
	return nil
}

func makeInstr(xi *xmlInstr) (Instr, error) {
	var in Instr

	var orderRaw, opcodeRaw string
	var hasOrder, hasOpcode bool
	for _, a := range xi.Attrs {
		switch a.Name.Local {
		case "order":
			orderRaw, hasOrder = a.Value, true
		case "opcode":
			opcodeRaw, hasOpcode = a.Value, true
		default:
			return in, status.Errorf(status.XMLStructure, "invalid instruction attribute %s", a.Name.Local)
		}
	}
	if !hasOrder || !hasOpcode {
		return in, status.Errorf(status.XMLStructure, "instruction requires order and opcode attributes")
	}

	order, err := strconv.Atoi(strings.TrimSpace(orderRaw))
	if err != nil || order < 1 {
		return in, status.Errorf(status.XMLStructure, "invalid order %q", orderRaw)
	}
	in.Order = order

	op, ok := LookupOpcode(strings.TrimSpace(opcodeRaw))
	if !ok {
		return in, status.Errorf(status.XMLStructure, "unknown opcode %q", opcodeRaw)
	}
	in.Op = op

	if len(xi.Extra) > 0 {
		return in, status.Errorf(status.XMLStructure, "unexpected element %s in instruction %d", xi.Extra[0].XMLName.Local, order)
	}

	xargs := []*xmlArg{xi.Arg1, xi.Arg2, xi.Arg3}
	n := 0
	for i, xa := range xargs {
		if xa == nil {
			continue
		}
		if i != n {
			return in, status.Errorf(status.XMLStructure, "instruction %d: arg%d without arg%d", order, i+1, n+1)
		}
		n++
	}

	sig := signatures[op]
	if n != len(sig) {
		return in, status.Errorf(status.XMLStructure, "instruction %d: %s requires %d arguments, got %d", order, op, len(sig), n)
	}

	in.Args = make([]Arg, 0, n)
	for i := 0; i < n; i++ {
		arg, err := makeArg(xargs[i], sig[i], order, i+1)
		if err != nil {
			return in, err
		}
		in.Args = append(in.Args, arg)
	}
	return in, nil
}

func makeArg(xa *xmlArg, class argClass, order, pos int) (Arg, error) {
	var arg Arg

	var typ string
	var hasType bool
	for _, a := range xa.Attrs {
		if a.Name.Local != "type" {
			return arg, status.Errorf(status.XMLStructure, "instruction %d: invalid arg%d attribute %s", order, pos, a.Name.Local)
		}
		typ, hasType = a.Value, true
	}
	if !hasType {
		return arg, status.Errorf(status.XMLStructure, "instruction %d: arg%d requires a type attribute", order, pos)
	}

	kind, ok := lookupArgKind(typ)
	if !ok {
		return arg, status.Errorf(status.XMLStructure, "instruction %d: invalid arg%d type %q", order, pos, typ)
	}
	arg.Kind = kind
	arg.Raw = strings.TrimSpace(xa.Body)

	classOK := false
	switch class {
	case classVar:
		classOK = kind == ArgVar
	case classSymb:
		classOK = kind == ArgVar || kind.IsLiteral()
	case classLabel:
		classOK = kind == ArgLabel
	case classType:
		classOK = kind == ArgType
	}
	if !classOK {
		return arg, status.Errorf(status.XMLStructure, "instruction %d: arg%d cannot be of type %s", order, pos, kind)
	}

	switch {
	case kind == ArgVar:
		if !validVarName(arg.Raw) {
			return arg, status.Errorf(status.XMLStructure, "instruction %d: invalid variable name %q", order, arg.Raw)
		}
	case kind == ArgLabel:
		if arg.Raw == "" {
			return arg, status.Errorf(status.XMLStructure, "instruction %d: empty label name", order)
		}
	case kind == ArgType:
		switch arg.Raw {
		case "int", "string", "bool":
		default:
			return arg, status.Errorf(status.XMLStructure, "instruction %d: invalid type name %q", order, arg.Raw)
		}
	case kind.IsLiteral():
		v, err := types.ParseLiteral(kind.String(), arg.Raw)
		if err != nil {
			return arg, err
		}
		arg.Val = v
	}
	return arg, nil
}

// validVarName reports whether s is a frame-qualified variable name.
func validVarName(s string) bool {
	if len(s) < 4 || s[2] != '@' {
		return false
	}
	switch s[:2] {
	case "GF", "LF", "TF":
		return true
	}
	return false
}
