package status

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

var allCodes = [...]Code{OK, Usage, InputOpen, XMLSyntax, XMLStructure,
	Semantic, OperandType, UndefVar, NoFrame, NoValue, OperandValue, StringOp}

func TestCodeString(t *testing.T) {
	seen := make(map[string]bool, len(allCodes))
	for _, c := range allCodes {
		s := c.String()
		if s == "" {
			t.Errorf("missing string representation of code %d", c)
		}
		if seen[s] {
			t.Errorf("duplicate string representation %q", s)
		}
		seen[s] = true
	}
}

func TestCodeStringUnknown(t *testing.T) {
	require.Equal(t, "exit code 42", Code(42).String())
}

func TestErrorf(t *testing.T) {
	err := Errorf(UndefVar, "undefined variable %s", "GF@x")
	require.EqualError(t, err, "undefined variable: undefined variable GF@x")

	var serr *Error
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &serr))
	require.Equal(t, UndefVar, serr.Code)
}
