package machine

import (
	"fmt"
	"io"
)

// dump writes a human-readable snapshot of the machine state to the error
// stream: frames with their variables, counters and both stacks. order is
// the source order of the instruction requesting the dump.
func (m *Machine) dump(order int) {
	w := m.stderr
	fmt.Fprintln(w, "###############")
	fmt.Fprintln(w, "MACHINE STATE")

	fmt.Fprintln(w, "\tglobal frame:")
	dumpFrame(w, m.globals, "\t\t")

	fmt.Fprintln(w, "\tlocal frames:")
	for i := len(m.locals) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "\t\tframe %d:\n", i+1)
		dumpFrame(w, m.locals[i], "\t\t\t")
	}

	fmt.Fprintln(w, "\ttemporary frame:")
	if m.temp == nil {
		fmt.Fprintln(w, "\t\tundefined")
	} else {
		dumpFrame(w, m.temp, "\t\t")
	}

	fmt.Fprintf(w, "\texecuted instructions: %d\n", m.steps)
	fmt.Fprintf(w, "\tposition in code: order %d\n", order)

	fmt.Fprintln(w, "\tcall stack:")
	for i := len(m.callStack) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "\t\tindex %d\n", m.callStack[i])
	}

	fmt.Fprintln(w, "\tdata stack:")
	for i := len(m.dataStack) - 1; i >= 0; i-- {
		v := m.dataStack[i]
		fmt.Fprintf(w, "\t\ttype: %s\tvalue: %s\n", typeName(v), v)
	}
	fmt.Fprintln(w, "###############")
}

func dumpFrame(w io.Writer, f *Frame, indent string) {
	for _, name := range f.Names() {
		v, _ := f.Get(name)
		fmt.Fprintf(w, "%sname: %s\ttype: %s\tvalue: %s\n", indent, name, typeName(v), v)
	}
}
