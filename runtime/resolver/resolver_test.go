package resolver

import (
	"testing"

	"github.com/dmnfeel/engine/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Full Name", "full name"},
		{"full_name", "full name"},
		{"Full   Name", "full name"},
		{"Input With Spaces", "input with spaces"},
		{"input_with_spaces", "input with spaces"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestFrameLookupExactWinsOverNormalized(t *testing.T) {
	f := NewFrame()
	f.Bind("full name", types.String("lowercase"))
	f.Bind("Full Name", types.String("titlecase"))

	v, ok := f.Lookup("Full Name")
	require.True(t, ok)
	assert.Equal(t, "titlecase", v.Str)
}

func TestFrameLookupFirstInsertedWinsOnTie(t *testing.T) {
	f := NewFrame()
	f.Bind("Full Name", types.String("first"))
	f.Bind("FULL NAME", types.String("second"))

	v, ok := f.Lookup("full_name")
	require.True(t, ok)
	assert.Equal(t, "first", v.Str)
}

func TestEnvInnerShadowsOuter(t *testing.T) {
	root := NewFrame()
	root.Bind("x", types.NumberFromInt(1))
	env := NewEnv(root)

	inner := NewFrame()
	inner.Bind("x", types.NumberFromInt(2))
	env2 := env.Push(inner)

	v, ok := env2.Lookup("x")
	require.True(t, ok)
	assert.True(t, v.Num.Equal(types.NumberFromInt(2).Num))

	// original env is unmodified
	v, ok = env.Lookup("x")
	require.True(t, ok)
	assert.True(t, v.Num.Equal(types.NumberFromInt(1).Num))
}
