package program

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpcodeString(t *testing.T) {
	for op := Opcode(0); op < maxOpcode; op++ {
		if opcodeNames[op] == "" {
			t.Errorf("missing string representation of opcode %d", op)
		}
	}
}

func TestLookupOpcode(t *testing.T) {
	for op := Opcode(0); op < maxOpcode; op++ {
		got, ok := LookupOpcode(op.String())
		require.True(t, ok)
		require.Equal(t, op, got)

		got, ok = LookupOpcode(strings.ToLower(op.String()))
		require.True(t, ok)
		require.Equal(t, op, got)
	}

	_, ok := LookupOpcode("NOSUCHOP")
	require.False(t, ok)
}

func TestSignatures(t *testing.T) {
	for op := Opcode(0); op < maxOpcode; op++ {
		sig := signatures[op]
		require.LessOrEqual(t, len(sig), 3, "opcode %s", op)
		// a destination or label always comes first
		for i, class := range sig {
			if class == classVar || class == classLabel {
				require.Equal(t, 0, i, "opcode %s", op)
			}
		}
	}
}
