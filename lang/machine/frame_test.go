package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ipp23/interp/lang/types"
)

func TestFrame(t *testing.T) {
	f := NewFrame()
	require.Equal(t, 0, f.Len())
	require.False(t, f.Has("x"))
	_, ok := f.Get("x")
	require.False(t, ok)

	require.True(t, f.Declare("x"))
	require.False(t, f.Declare("x"), "redeclaration must fail")
	require.True(t, f.Has("x"))

	v, ok := f.Get("x")
	require.True(t, ok)
	require.Equal(t, types.Uninit, v, "a fresh variable is uninitialized")

	f.Set("x", types.Int(7))
	v, ok = f.Get("x")
	require.True(t, ok)
	require.Equal(t, types.Int(7), v)

	// overwriting is allowed, including with a different kind
	f.Set("x", types.String("s"))
	v, _ = f.Get("x")
	require.Equal(t, types.String("s"), v)

	require.True(t, f.Declare("a"))
	require.True(t, f.Declare("b"))
	assert.Equal(t, 3, f.Len())
	assert.Equal(t, []string{"a", "b", "x"}, f.Names())
}
