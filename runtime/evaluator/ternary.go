package evaluator

import "github.com/dmnfeel/engine/core/types"

// ternaryKind classifies a Value into the three-valued logic domain used by
// and/or/not. Non-boolean, non-null values are treated as null for the
// purpose of these operators (DMN leaves them undefined; we fold them
// into the safest reading rather than panicking).
func ternaryKind(v types.Value) (b bool, isBool bool, isNull bool) {
	switch v.Kind {
	case types.KindBoolean:
		return v.Bool, true, false
	case types.KindNull:
		return false, false, true
	default:
		return false, false, true
	}
}

// ternaryAnd implements the and truth table over {true, false, null}:
// true and X = X; false and X = false; null and true = null; null and false = false; null and null = null.
func ternaryAnd(a, b types.Value) types.Value {
	av, aBool, _ := ternaryKind(a)
	bv, bBool, _ := ternaryKind(b)
	if aBool && !av {
		return types.Bool(false)
	}
	if bBool && !bv {
		return types.Bool(false)
	}
	if aBool && bBool {
		return types.Bool(av && bv)
	}
	return types.Null
}

// ternaryOr implements the or truth table: true or X = true; false or X = X;
// null or true = true; null or false = null; null or null = null.
func ternaryOr(a, b types.Value) types.Value {
	av, aBool, _ := ternaryKind(a)
	bv, bBool, _ := ternaryKind(b)
	if aBool && av {
		return types.Bool(true)
	}
	if bBool && bv {
		return types.Bool(true)
	}
	if aBool && bBool {
		return types.Bool(av || bv)
	}
	return types.Null
}

// ternaryNot implements not null = null.
func ternaryNot(v types.Value) types.Value {
	b, isBool, _ := ternaryKind(v)
	if !isBool {
		return types.Null
	}
	return types.Bool(!b)
}
