package evaluator

import (
	"strings"

	"github.com/dmnfeel/engine/core/types"
	"github.com/shopspring/decimal"
)

// builtin is a built-in FEEL function: already-evaluated args in, a Value
// out. Built-ins never return errors; an unsuitable argument yields Null,
// consistent with the evaluator's recoverable-failure convention.
type builtin func(ev *Evaluator, args []types.Value) types.Value

// builtins is the fixed table of supported built-ins: numeric, boolean,
// string, list, and temporal functions, plus `in` as a function form.
// This is intentionally not the full FEEL standard library — only this
// fixed set is registered.
var builtins = map[string]builtin{
	// numeric
	"sum":      biSum,
	"min":      biMin,
	"max":      biMax,
	"mean":     biMean,
	"count":    biCount,
	"abs":      biAbs,
	"floor":    biFloor,
	"ceiling":  biCeiling,
	"modulo":   biModulo,
	"decimal":  biDecimal,

	// boolean
	"not": biNot,

	// string
	"substring":     biSubstring,
	"string length": biStringLength,
	"upper case":    biUpperCase,
	"lower case":    biLowerCase,
	"contains":      biContains,
	"starts with":   biStartsWith,
	"ends with":     biEndsWith,
	"string join":   biStringJoin,

	// list
	"list contains":   biListContains,
	"append":          biAppend,
	"concatenate":     biConcatenate,
	"sublist":         biSublist,
	"reverse":         biReverse,
	"sort":            biSort,
	"distinct values": biDistinctValues,
	"flatten":         biFlatten,

	// membership as a function form
	"in": biIn,
}

func argAt(args []types.Value, i int) types.Value {
	if i < 0 || i >= len(args) {
		return types.Null
	}
	return args[i]
}

// flattenNumericArgs supports both `sum([1,2,3])` and `sum(1,2,3)` call
// shapes, as FEEL's variadic numeric built-ins allow either.
func flattenNumericArgs(args []types.Value) ([]decimal.Decimal, bool) {
	var vals []types.Value
	if len(args) == 1 && args[0].Kind == types.KindList {
		vals = args[0].List
	} else {
		vals = args
	}
	out := make([]decimal.Decimal, 0, len(vals))
	for _, v := range vals {
		if v.Kind != types.KindNumber {
			return nil, false
		}
		out = append(out, v.Num)
	}
	return out, true
}

func biSum(ev *Evaluator, args []types.Value) types.Value {
	nums, ok := flattenNumericArgs(args)
	if !ok || len(nums) == 0 {
		return types.Null
	}
	total := decimal.Zero
	for _, n := range nums {
		total = total.Add(n)
	}
	return types.Number(total)
}

func biMin(ev *Evaluator, args []types.Value) types.Value {
	nums, ok := flattenNumericArgs(args)
	if !ok || len(nums) == 0 {
		return types.Null
	}
	m := nums[0]
	for _, n := range nums[1:] {
		if n.LessThan(m) {
			m = n
		}
	}
	return types.Number(m)
}

func biMax(ev *Evaluator, args []types.Value) types.Value {
	nums, ok := flattenNumericArgs(args)
	if !ok || len(nums) == 0 {
		return types.Null
	}
	m := nums[0]
	for _, n := range nums[1:] {
		if n.GreaterThan(m) {
			m = n
		}
	}
	return types.Number(m)
}

func biMean(ev *Evaluator, args []types.Value) types.Value {
	nums, ok := flattenNumericArgs(args)
	if !ok || len(nums) == 0 {
		return types.Null
	}
	total := decimal.Zero
	for _, n := range nums {
		total = total.Add(n)
	}
	return types.Number(total.Div(decimal.NewFromInt(int64(len(nums)))))
}

func biCount(ev *Evaluator, args []types.Value) types.Value {
	v := argAt(args, 0)
	if v.Kind != types.KindList {
		return types.Null
	}
	return types.NumberFromInt(int64(len(v.List)))
}

func biAbs(ev *Evaluator, args []types.Value) types.Value {
	v := argAt(args, 0)
	n, ok := ev.toNumber(v)
	if !ok {
		return types.Null
	}
	return types.Number(n.Abs())
}

func biFloor(ev *Evaluator, args []types.Value) types.Value {
	v := argAt(args, 0)
	n, ok := ev.toNumber(v)
	if !ok {
		return types.Null
	}
	return types.Number(n.Floor())
}

func biCeiling(ev *Evaluator, args []types.Value) types.Value {
	v := argAt(args, 0)
	n, ok := ev.toNumber(v)
	if !ok {
		return types.Null
	}
	return types.Number(n.Ceil())
}

func biModulo(ev *Evaluator, args []types.Value) types.Value {
	a, aok := ev.toNumber(argAt(args, 0))
	b, bok := ev.toNumber(argAt(args, 1))
	if !aok || !bok || b.IsZero() {
		return types.Null
	}
	// FEEL modulo takes the sign of the divisor, unlike decimal.Mod.
	m := a.Mod(b)
	if !m.IsZero() && m.Sign() != b.Sign() {
		m = m.Add(b)
	}
	return types.Number(m)
}

func biDecimal(ev *Evaluator, args []types.Value) types.Value {
	n, ok := ev.toNumber(argAt(args, 0))
	if !ok {
		return types.Null
	}
	scaleV, ok := ev.toNumber(argAt(args, 1))
	if !ok {
		return types.Null
	}
	return types.Number(n.Round(int32(scaleV.IntPart())))
}

func biNot(ev *Evaluator, args []types.Value) types.Value {
	return ternaryNot(argAt(args, 0))
}

func biSubstring(ev *Evaluator, args []types.Value) types.Value {
	s := argAt(args, 0)
	if s.Kind != types.KindString {
		return types.Null
	}
	startV, ok := ev.toNumber(argAt(args, 1))
	if !ok {
		return types.Null
	}
	runes := []rune(s.Str)
	start := int(startV.IntPart())
	if start < 0 {
		start = len(runes) + start + 1
	}
	if start < 1 {
		start = 1
	}
	if start > len(runes)+1 {
		return types.String("")
	}
	length := len(runes) - (start - 1)
	if len(args) > 2 {
		lenV, ok := ev.toNumber(args[2])
		if !ok {
			return types.Null
		}
		length = int(lenV.IntPart())
	}
	end := start - 1 + length
	if end > len(runes) {
		end = len(runes)
	}
	if end < start-1 {
		return types.String("")
	}
	return types.String(string(runes[start-1 : end]))
}

func biStringLength(ev *Evaluator, args []types.Value) types.Value {
	s := argAt(args, 0)
	if s.Kind != types.KindString {
		return types.Null
	}
	return types.NumberFromInt(int64(len([]rune(s.Str))))
}

func biUpperCase(ev *Evaluator, args []types.Value) types.Value {
	s := argAt(args, 0)
	if s.Kind != types.KindString {
		return types.Null
	}
	return types.String(strings.ToUpper(s.Str))
}

func biLowerCase(ev *Evaluator, args []types.Value) types.Value {
	s := argAt(args, 0)
	if s.Kind != types.KindString {
		return types.Null
	}
	return types.String(strings.ToLower(s.Str))
}

func biContains(ev *Evaluator, args []types.Value) types.Value {
	s, m := argAt(args, 0), argAt(args, 1)
	if s.Kind != types.KindString || m.Kind != types.KindString {
		return types.Null
	}
	return types.Bool(strings.Contains(s.Str, m.Str))
}

func biStartsWith(ev *Evaluator, args []types.Value) types.Value {
	s, m := argAt(args, 0), argAt(args, 1)
	if s.Kind != types.KindString || m.Kind != types.KindString {
		return types.Null
	}
	return types.Bool(strings.HasPrefix(s.Str, m.Str))
}

func biEndsWith(ev *Evaluator, args []types.Value) types.Value {
	s, m := argAt(args, 0), argAt(args, 1)
	if s.Kind != types.KindString || m.Kind != types.KindString {
		return types.Null
	}
	return types.Bool(strings.HasSuffix(s.Str, m.Str))
}

func biStringJoin(ev *Evaluator, args []types.Value) types.Value {
	list := argAt(args, 0)
	if list.Kind != types.KindList {
		return types.Null
	}
	sep := ""
	if len(args) > 1 && args[1].Kind == types.KindString {
		sep = args[1].Str
	}
	parts := make([]string, 0, len(list.List))
	for _, v := range list.List {
		if v.Kind != types.KindString {
			return types.Null
		}
		parts = append(parts, v.Str)
	}
	return types.String(strings.Join(parts, sep))
}

func biListContains(ev *Evaluator, args []types.Value) types.Value {
	list, item := argAt(args, 0), argAt(args, 1)
	if list.Kind != types.KindList {
		return types.Null
	}
	for _, v := range list.List {
		if types.Equal(v, item) {
			return types.Bool(true)
		}
	}
	return types.Bool(false)
}

func biAppend(ev *Evaluator, args []types.Value) types.Value {
	list := argAt(args, 0)
	if list.Kind != types.KindList {
		return types.Null
	}
	out := append([]types.Value(nil), list.List...)
	out = append(out, args[1:]...)
	return types.List(out)
}

func biConcatenate(ev *Evaluator, args []types.Value) types.Value {
	var out []types.Value
	for _, v := range args {
		if v.Kind != types.KindList {
			return types.Null
		}
		out = append(out, v.List...)
	}
	return types.List(out)
}

func biSublist(ev *Evaluator, args []types.Value) types.Value {
	list := argAt(args, 0)
	if list.Kind != types.KindList {
		return types.Null
	}
	startV, ok := ev.toNumber(argAt(args, 1))
	if !ok {
		return types.Null
	}
	start := int(startV.IntPart())
	if start < 0 {
		start = len(list.List) + start + 1
	}
	if start < 1 || start > len(list.List) {
		return types.Null
	}
	length := len(list.List) - start + 1
	if len(args) > 2 {
		lenV, ok := ev.toNumber(args[2])
		if !ok {
			return types.Null
		}
		length = int(lenV.IntPart())
	}
	end := start - 1 + length
	if end > len(list.List) {
		end = len(list.List)
	}
	if end < start-1 {
		return types.Null
	}
	out := append([]types.Value(nil), list.List[start-1:end]...)
	return types.List(out)
}

func biReverse(ev *Evaluator, args []types.Value) types.Value {
	list := argAt(args, 0)
	if list.Kind != types.KindList {
		return types.Null
	}
	out := make([]types.Value, len(list.List))
	for i, v := range list.List {
		out[len(list.List)-1-i] = v
	}
	return types.List(out)
}

func biSort(ev *Evaluator, args []types.Value) types.Value {
	list := argAt(args, 0)
	if list.Kind != types.KindList {
		return types.Null
	}
	out := append([]types.Value(nil), list.List...)
	types.SortValues(out)
	return types.List(out)
}

func biDistinctValues(ev *Evaluator, args []types.Value) types.Value {
	list := argAt(args, 0)
	if list.Kind != types.KindList {
		return types.Null
	}
	var out []types.Value
	for _, v := range list.List {
		dup := false
		for _, seen := range out {
			if types.Equal(v, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return types.List(out)
}

func biFlatten(ev *Evaluator, args []types.Value) types.Value {
	list := argAt(args, 0)
	if list.Kind != types.KindList {
		return types.Null
	}
	var out []types.Value
	var walk func([]types.Value)
	walk = func(items []types.Value) {
		for _, v := range items {
			if v.Kind == types.KindList {
				walk(v.List)
			} else {
				out = append(out, v)
			}
		}
	}
	walk(list.List)
	return types.List(out)
}

// biIn implements `in` as a function form: in(value, list|range) in addition
// to the `in` binary operator handled directly in binop.go.
func biIn(ev *Evaluator, args []types.Value) types.Value {
	lhs, rhs := argAt(args, 0), argAt(args, 1)
	if lhs.IsNull() {
		return types.Null
	}
	switch rhs.Kind {
	case types.KindRange:
		return ev.testRange(lhs, rhs.Rng)
	case types.KindList:
		for _, item := range rhs.List {
			if types.Equal(lhs, item) {
				return types.Bool(true)
			}
		}
		return types.Bool(false)
	default:
		return types.Bool(types.Equal(lhs, rhs))
	}
}
