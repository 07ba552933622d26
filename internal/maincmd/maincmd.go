// Package maincmd implements the command-line interface of the interpreter:
// flag parsing and validation, input file handling, and the mapping of
// interpreter errors to process exit codes.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mna/mainer"

	"github.com/ipp23/interp/lang/machine"
	"github.com/ipp23/interp/lang/program"
	"github.com/ipp23/interp/lang/status"
)

const binName = "interp"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [--source=FILE] [--input=FILE]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [--source=FILE] [--input=FILE]
       %[1]s --help

Interpreter for the IPPcode23 language. It reads the XML representation
of a program, executes it, and exits with the program's exit code or
with the code of the first error encountered.

Valid flag options are:
       --source=FILE             Read the XML program representation
                                 from FILE.
       --input=FILE              Read the executed program's input from
                                 FILE.
       --help                    Show this help and exit. Must be the
                                 only argument.

At least one of --source and --input must be provided; the other one
defaults to standard input.
`, binName)
)

type Cmd struct {
	Source string `flag:"source"`
	Input  string `flag:"input"`
	Help   bool   `flag:"help"`

	args  []string
	flags map[string]bool
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help {
		if len(c.flags) > 1 || len(c.args) > 0 {
			return errors.New("--help must be the only argument")
		}
		return nil
	}
	if len(c.args) > 0 {
		return fmt.Errorf("unexpected argument: %s", c.args[0])
	}
	if c.Source == "" && c.Input == "" {
		return errors.New("at least one of --source and --input is required")
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.ExitCode(status.Usage)
	}

	if c.Help {
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	code, err := c.run(ctx, stdio)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		var serr *status.Error
		if errors.As(err, &serr) {
			return mainer.ExitCode(serr.Code)
		}
		return mainer.Failure
	}
	return mainer.ExitCode(code)
}

// run wires the configured source and input endpoints to the loader and the
// machine, and returns the executed program's own exit code.
func (c *Cmd) run(ctx context.Context, stdio mainer.Stdio) (int, error) {
	source, err := c.open(c.Source, stdio)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	input, err := c.open(c.Input, stdio)
	if err != nil {
		return 0, err
	}
	defer input.Close()

	prog, err := program.Load(source)
	if err != nil {
		return 0, err
	}

	m := &machine.Machine{
		Stdout: stdio.Stdout,
		Stderr: stdio.Stderr,
		Stdin:  input,
	}
	if err := m.Run(ctx, prog); err != nil {
		return 0, err
	}
	return m.ExitCode(), nil
}

// open returns the named file, or the command's standard input if name is
// empty.
func (c *Cmd) open(name string, stdio mainer.Stdio) (io.ReadCloser, error) {
	if name == "" {
		return io.NopCloser(stdio.Stdin), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, status.Errorf(status.InputOpen, "%s", err)
	}
	return f, nil
}
