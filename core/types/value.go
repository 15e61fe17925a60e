// Package types defines the FEEL value domain, lexical token kinds, and
// source position/span types shared by the lexer, parser, and evaluator.
package types

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tags the variant carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindList
	KindContext
	KindRange
	KindDate
	KindTime
	KindDateTime
	KindDuration
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindContext:
		return "context"
	case KindRange:
		return "range"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "date and time"
	case KindDuration:
		return "duration"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Duration represents a FEEL duration value. FEEL distinguishes year-month
// durations (calendar arithmetic, no fixed length) from day-time durations
// (a fixed number of seconds). A Value never carries both at once.
type Duration struct {
	YearMonth  bool // true: Years/Months are meaningful; false: Time is meaningful
	Years      int
	Months     int
	Time       time.Duration
	Negative   bool
}

// Range is a FEEL range (interval) value such as [1..10) or ]a..b[.
type Range struct {
	Low, High               Value
	LowInclusive            bool
	HighInclusive           bool
}

// Function is a callable Value: either a built-in or a user-defined BKM/
// FEEL function literal. Call receives already-evaluated arguments.
type Function struct {
	Name   string
	Params []string
	Call   func(args []Value) Value
}

// Context is an insertion-ordered name -> Value mapping, FEEL's analogue of
// a JSON object. Order is preserved for serialization and for iteration in
// name-resolution tie-breaking (first-inserted wins).
type Context struct {
	keys   []string
	values map[string]Value
}

// NewContext returns an empty, ready-to-use Context.
func NewContext() *Context {
	return &Context{values: make(map[string]Value)}
}

// Set inserts or overwrites name -> v, preserving original insertion order
// on overwrite.
func (c *Context) Set(name string, v Value) {
	if _, exists := c.values[name]; !exists {
		c.keys = append(c.keys, name)
	}
	c.values[name] = v
}

// Get returns the value bound to name and whether it is bound.
func (c *Context) Get(name string) (Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Keys returns names in insertion order.
func (c *Context) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len returns the number of entries.
func (c *Context) Len() int {
	return len(c.keys)
}

// Value is the tagged sum type over which FEEL expressions evaluate.
// Values are immutable once constructed; every operation returns a new
// Value rather than mutating an existing one.
type Value struct {
	Kind     Kind
	Bool     bool
	Num      decimal.Decimal
	Str      string
	List     []Value
	Ctx      *Context
	Rng      *Range
	Time     time.Time
	Dur      Duration
	Fn       *Function
}

// Null is the singleton FEEL null value.
var Null = Value{Kind: KindNull}

// Bool constructs a boolean Value.
func Bool(b bool) Value {
	return Value{Kind: KindBoolean, Bool: b}
}

// Number constructs a Value from a decimal.Decimal.
func Number(d decimal.Decimal) Value {
	return Value{Kind: KindNumber, Num: d}
}

// NumberFromInt constructs a Value from an int64.
func NumberFromInt(i int64) Value {
	return Value{Kind: KindNumber, Num: decimal.NewFromInt(i)}
}

// NumberFromFloat constructs a Value from a float64.
func NumberFromFloat(f float64) Value {
	return Value{Kind: KindNumber, Num: decimal.NewFromFloat(f)}
}

// String constructs a string Value.
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// List constructs a list Value from already-evaluated elements.
func List(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindList, List: items}
}

// FromContext constructs a context Value.
func FromContext(ctx *Context) Value {
	return Value{Kind: KindContext, Ctx: ctx}
}

// FromRange constructs a range Value.
func FromRange(r *Range) Value {
	return Value{Kind: KindRange, Rng: r}
}

// FromFunction constructs a function Value.
func FromFunction(fn *Function) Value {
	return Value{Kind: KindFunction, Fn: fn}
}

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// Truthy reports v's ternary-logic reading: true iff v is boolean true.
// Anything else (including null and non-boolean values) is not truthy;
// callers needing the full three-valued reading should branch on Kind
// directly instead of calling Truthy.
func (v Value) Truthy() bool {
	return v.Kind == KindBoolean && v.Bool
}

// String formats v for diagnostics; it is not the DMN output serialization
// (see the jsoncodec package for that).
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBoolean:
		return fmt.Sprintf("%t", v.Bool)
	case KindNumber:
		return v.Num.String()
	case KindString:
		return v.Str
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindContext:
		parts := make([]string, 0, v.Ctx.Len())
		for _, k := range v.Ctx.Keys() {
			val, _ := v.Ctx.Get(k)
			parts = append(parts, fmt.Sprintf("%s: %s", k, val.String()))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case KindRange:
		lo := "("
		if v.Rng.LowInclusive {
			lo = "["
		}
		hi := ")"
		if v.Rng.HighInclusive {
			hi = "]"
		}
		return fmt.Sprintf("%s%s..%s%s", lo, v.Rng.Low.String(), v.Rng.High.String(), hi)
	case KindDate:
		return v.Time.Format("2006-01-02")
	case KindTime:
		return v.Time.Format("15:04:05")
	case KindDateTime:
		return v.Time.Format("2006-01-02T15:04:05")
	case KindDuration:
		return formatDuration(v.Dur)
	case KindFunction:
		return fmt.Sprintf("function<%s>", v.Fn.Name)
	default:
		return "?"
	}
}

func formatDuration(d Duration) string {
	sign := ""
	if d.Negative {
		sign = "-"
	}
	if d.YearMonth {
		return fmt.Sprintf("%sP%dY%dM", sign, d.Years, d.Months)
	}
	total := d.Time
	days := total / (24 * time.Hour)
	total -= days * 24 * time.Hour
	hours := total / time.Hour
	total -= hours * time.Hour
	minutes := total / time.Minute
	total -= minutes * time.Minute
	seconds := total.Seconds()
	return fmt.Sprintf("%sP%dDT%dH%dM%gS", sign, days, hours, minutes, seconds)
}

// sameFamily reports whether a and b belong to the same comparison family
// (both numeric, both strings, both booleans, or both temporal of the same
// Kind), the precondition for equality and ordering per DMN §10.3.2.8.
func sameFamily(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	return true
}

// Equal implements FEEL structural equality, including Null == Null.
func Equal(a, b Value) bool {
	if a.Kind == KindNull || b.Kind == KindNull {
		return a.Kind == b.Kind
	}
	if !sameFamily(a, b) {
		return false
	}
	switch a.Kind {
	case KindBoolean:
		return a.Bool == b.Bool
	case KindNumber:
		return a.Num.Equal(b.Num)
	case KindString:
		return a.Str == b.Str
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !Equal(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	case KindContext:
		if a.Ctx.Len() != b.Ctx.Len() {
			return false
		}
		for _, k := range a.Ctx.Keys() {
			av, _ := a.Ctx.Get(k)
			bv, ok := b.Ctx.Get(k)
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindDate, KindTime, KindDateTime:
		return a.Time.Equal(b.Time)
	case KindDuration:
		return durationNanos(a.Dur) == durationNanos(b.Dur)
	case KindRange:
		return Equal(a.Rng.Low, b.Rng.Low) && Equal(a.Rng.High, b.Rng.High) &&
			a.Rng.LowInclusive == b.Rng.LowInclusive && a.Rng.HighInclusive == b.Rng.HighInclusive
	default:
		return false
	}
}

func durationNanos(d Duration) int64 {
	if d.YearMonth {
		months := int64(d.Years*12 + d.Months)
		if d.Negative {
			months = -months
		}
		return months
	}
	n := int64(d.Time)
	if d.Negative {
		n = -n
	}
	return n
}

// Compare returns -1, 0, 1 for a<b, a==b, a>b, and ok=false when the values
// are not comparable (different families, or a non-ordered kind).
func Compare(a, b Value) (cmp int, ok bool) {
	if a.IsNull() || b.IsNull() || !sameFamily(a, b) {
		return 0, false
	}
	switch a.Kind {
	case KindNumber:
		return a.Num.Cmp(b.Num), true
	case KindString:
		return strings.Compare(a.Str, b.Str), true
	case KindBoolean:
		if a.Bool == b.Bool {
			return 0, true
		}
		if !a.Bool && b.Bool {
			return -1, true
		}
		return 1, true
	case KindDate, KindTime, KindDateTime:
		if a.Time.Before(b.Time) {
			return -1, true
		}
		if a.Time.After(b.Time) {
			return 1, true
		}
		return 0, true
	case KindDuration:
		an, bn := durationNanos(a.Dur), durationNanos(b.Dur)
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

// SortValues sorts a slice of Values in place using Compare's ordering,
// leaving relative order of incomparable elements unchanged (stable sort).
// Used by the `sort` built-in.
func SortValues(vs []Value) {
	sort.SliceStable(vs, func(i, j int) bool {
		c, ok := Compare(vs[i], vs[j])
		return ok && c < 0
	})
}
