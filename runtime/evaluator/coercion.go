package evaluator

import (
	"strings"

	"github.com/dmnfeel/engine/core/types"
	"github.com/shopspring/decimal"
)

// toNumber coerces v toward a number: numbers pass through, strings parse
// using the same grammar as number literals, booleans convert
// true->1, false->0; anything else fails.
func (ev *Evaluator) toNumber(v types.Value) (decimal.Decimal, bool) {
	switch v.Kind {
	case types.KindNumber:
		return v.Num, true
	case types.KindString:
		d, err := decimal.NewFromString(strings.TrimSpace(v.Str))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case types.KindBoolean:
		if v.Bool {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	default:
		return decimal.Zero, false
	}
}
