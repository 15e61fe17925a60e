package parser

import (
	"testing"

	"github.com/dmnfeel/engine/core/ast"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// astDiff compares two ASTs structurally, ignoring the unexported span
// carried by ast.Base: parse determinism is about shape, not about two
// independently-parsed trees happening to share a *Parser instance.
func astDiff(want, got ast.Node) string {
	return cmp.Diff(want, got, cmpopts.IgnoreUnexported(ast.Base{}))
}

func TestParseExpressionDeterministic(t *testing.T) {
	exprs := []string{
		`"Hello " + Full Name`,
		`if Age >= 18 then "Adult" else "Minor"`,
		`[1, 2, 3][item > 1]`,
		`some x in [1..10] satisfies x > 5`,
		`for x in Items return x.Price * x.Quantity`,
		`{ a: 1, b: [1,2,3], c: { d: true } }`,
		`function(a, b) a + b`,
	}
	for _, src := range exprs {
		t.Run(src, func(t *testing.T) {
			a, err := ParseExpression(src)
			if err != nil {
				t.Fatalf("first parse: %v", err)
			}
			b, err := ParseExpression(src)
			if err != nil {
				t.Fatalf("second parse: %v", err)
			}
			if diff := astDiff(a, b); diff != "" {
				t.Errorf("repeated parse of %q produced structurally different ASTs (-first +second):\n%s", src, diff)
			}
		})
	}
}

func TestParseUnaryTestsDeterministic(t *testing.T) {
	tests := []string{
		`<18`,
		`[18..65)`,
		`>=65`,
		`-`,
		`"Adult", "Senior"`,
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			a, err := ParseUnaryTests(src)
			if err != nil {
				t.Fatalf("first parse: %v", err)
			}
			b, err := ParseUnaryTests(src)
			if err != nil {
				t.Fatalf("second parse: %v", err)
			}
			if diff := astDiff(a, b); diff != "" {
				t.Errorf("repeated parse of %q produced structurally different ASTs (-first +second):\n%s", src, diff)
			}
		})
	}
}

// TestParseExpressionSpansPopulated guards the invariant that every node
// records a non-zero source span, the detail the prior zero-value base left
// unmet.
func TestParseExpressionSpansPopulated(t *testing.T) {
	n, err := ParseExpression(`1 + 2`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bin, ok := n.(*ast.BinOp)
	if !ok {
		t.Fatalf("expected *ast.BinOp, got %T", n)
	}
	sp := bin.Span()
	if sp.Start.Offset == sp.End.Offset {
		t.Errorf("BinOp span is zero-width: %+v", sp)
	}
	lhsSpan := bin.Lhs.Span()
	if lhsSpan.End.Offset <= lhsSpan.Start.Offset {
		t.Errorf("Lhs literal span is zero-width: %+v", lhsSpan)
	}
}
