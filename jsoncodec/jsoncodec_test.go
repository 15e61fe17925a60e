package jsoncodec

import (
	"testing"

	"github.com/dmnfeel/engine/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeContextPreservesOrderAndNesting(t *testing.T) {
	ctx, err := DecodeContext([]byte(`{"b": 1, "a": {"nested": true}, "c": [1, "x", null]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ctx.Keys())

	bv, _ := ctx.Get("b")
	assert.Equal(t, "1", bv.Num.String())

	av, _ := ctx.Get("a")
	require.Equal(t, types.KindContext, av.Kind)
	nested, ok := av.Ctx.Get("nested")
	require.True(t, ok)
	assert.True(t, nested.Truthy())

	cv, _ := ctx.Get("c")
	require.Equal(t, types.KindList, cv.Kind)
	require.Len(t, cv.List, 3)
	assert.True(t, cv.List[2].IsNull())
}

func TestDecodeContextRejectsNonObjectRoot(t *testing.T) {
	_, err := DecodeContext([]byte(`[1,2,3]`))
	assert.Error(t, err)
}

func TestEncodeContextRoundTripsScalarsAndLists(t *testing.T) {
	ctx := types.NewContext()
	ctx.Set("Greeting", types.String("Hello John Doe"))
	ctx.Set("Scores", types.List([]types.Value{types.NumberFromInt(1), types.NumberFromInt(2)}))
	ctx.Set("Missing", types.Null)

	out, err := EncodeContext(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Greeting":"Hello John Doe","Scores":[1,2],"Missing":null}`, string(out))
}

func TestEncodeRangeValue(t *testing.T) {
	v := types.FromRange(&types.Range{
		Low: types.NumberFromInt(1), High: types.NumberFromInt(10),
		LowInclusive: true, HighInclusive: false,
	})
	encoded := EncodeValue(v)
	_, ok := encoded.(*orderedObject)
	require.True(t, ok)
}
