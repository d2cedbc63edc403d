package optimizer

import "github.com/hantei-go/hantei/internal/ast"

// foldPass runs one bottom-up constant-folding / boolean-identity /
// contradiction pass over expr, returning the rewritten tree and whether
// anything changed. Children are folded before their parent so that a
// parent sees its operands already in final form, matching the teacher's
// constantFolding loop structure (fold to a local fixed point, then hand off
// to the next pass) generalized from boolean-only nodes to every operator
// family this tree supports.
func foldPass(expr *ast.Expression) (*ast.Expression, bool) {
	if expr == nil || expr.IsLeaf() {
		return expr, false
	}

	changed := false

	left, lc := foldPass(expr.Left)
	changed = changed || lc

	var right *ast.Expression
	if expr.Right != nil {
		var rc bool
		right, rc = foldPass(expr.Right)
		changed = changed || rc
	}

	rebuilt := rebuild(expr.Kind, left, right)

	if folded, ok := tryFold(rebuilt); ok {
		return folded, true
	}

	return rebuilt, changed
}

func rebuild(kind ast.Kind, left, right *ast.Expression) *ast.Expression {
	if right == nil {
		return &ast.Expression{Kind: kind, Left: left}
	}
	return &ast.Expression{Kind: kind, Left: left, Right: right}
}

// tryFold attempts to collapse e into a simpler expression: full constant
// evaluation when every leaf involved is a Literal, the short-circuiting
// boolean identities (And/Or with one side known), and the contradictory
// range-comparison rule ("x>A AND x<B" with A>=B is always false).
func tryFold(e *ast.Expression) (*ast.Expression, bool) {
	switch e.Kind {
	case ast.Sum, ast.Subtract, ast.Multiply, ast.Divide:
		return foldArithmetic(e)
	case ast.Abs:
		return foldAbs(e)
	case ast.Not:
		return foldNot(e)
	case ast.And:
		if folded, ok := foldAndIdentity(e); ok {
			return folded, true
		}
		return foldContradiction(e)
	case ast.Or:
		return foldOrIdentity(e)
	case ast.Xor:
		return foldXor(e)
	case ast.Equal, ast.NotEqual, ast.GreaterThan, ast.GreaterThanOrEqual, ast.SmallerThan, ast.SmallerThanOrEqual:
		return foldComparison(e)
	default:
		return nil, false
	}
}

func asLiteral(e *ast.Expression) (ast.Value, bool) {
	if e.Kind == ast.LiteralExpr {
		return e.Literal, true
	}
	return ast.Value{}, false
}

func foldArithmetic(e *ast.Expression) (*ast.Expression, bool) {
	l, lok := asLiteral(e.Left)
	r, rok := asLiteral(e.Right)
	if !lok || !rok || !l.IsNumber() || !r.IsNumber() {
		return nil, false
	}
	switch e.Kind {
	case ast.Sum:
		return ast.NewLiteral(ast.Number(l.Num + r.Num)), true
	case ast.Subtract:
		return ast.NewLiteral(ast.Number(l.Num - r.Num)), true
	case ast.Multiply:
		return ast.NewLiteral(ast.Number(l.Num * r.Num)), true
	case ast.Divide:
		return ast.NewLiteral(ast.Number(l.Num / r.Num)), true
	}
	return nil, false
}

func foldAbs(e *ast.Expression) (*ast.Expression, bool) {
	v, ok := asLiteral(e.Left)
	if !ok || !v.IsNumber() {
		return nil, false
	}
	n := v.Num
	if n < 0 {
		n = -n
	}
	return ast.NewLiteral(ast.Number(n)), true
}

func foldNot(e *ast.Expression) (*ast.Expression, bool) {
	v, ok := asLiteral(e.Left)
	if !ok || !v.IsBool() {
		return nil, false
	}
	return ast.NewLiteral(ast.Bool(!v.B)), true
}

// foldAndIdentity applies And(true,x)=x, And(false,x)=false and their
// mirror image, and fully folds when both sides are literal.
func foldAndIdentity(e *ast.Expression) (*ast.Expression, bool) {
	l, lok := asLiteral(e.Left)
	r, rok := asLiteral(e.Right)
	if lok && rok && l.IsBool() && r.IsBool() {
		return ast.NewLiteral(ast.Bool(l.B && r.B)), true
	}
	if lok && l.IsBool() {
		if !l.B {
			return ast.NewLiteral(ast.Bool(false)), true
		}
		return e.Right, true
	}
	if rok && r.IsBool() {
		if !r.B {
			return ast.NewLiteral(ast.Bool(false)), true
		}
		return e.Left, true
	}
	return nil, false
}

// foldOrIdentity applies Or(true,x)=true, Or(false,x)=x and their mirror
// image, and fully folds when both sides are literal.
func foldOrIdentity(e *ast.Expression) (*ast.Expression, bool) {
	l, lok := asLiteral(e.Left)
	r, rok := asLiteral(e.Right)
	if lok && rok && l.IsBool() && r.IsBool() {
		return ast.NewLiteral(ast.Bool(l.B || r.B)), true
	}
	if lok && l.IsBool() {
		if l.B {
			return ast.NewLiteral(ast.Bool(true)), true
		}
		return e.Right, true
	}
	if rok && r.IsBool() {
		if r.B {
			return ast.NewLiteral(ast.Bool(true)), true
		}
		return e.Left, true
	}
	return nil, false
}

func foldXor(e *ast.Expression) (*ast.Expression, bool) {
	l, lok := asLiteral(e.Left)
	r, rok := asLiteral(e.Right)
	if !lok || !rok || !l.IsBool() || !r.IsBool() {
		return nil, false
	}
	return ast.NewLiteral(ast.Bool(l.B != r.B)), true
}

func foldComparison(e *ast.Expression) (*ast.Expression, bool) {
	l, lok := asLiteral(e.Left)
	r, rok := asLiteral(e.Right)
	if !lok || !rok {
		return nil, false
	}
	switch e.Kind {
	case ast.Equal:
		return ast.NewLiteral(ast.Bool(l.Equal(r))), true
	case ast.NotEqual:
		return ast.NewLiteral(ast.Bool(!l.Equal(r))), true
	}
	if !l.IsNumber() || !r.IsNumber() {
		return nil, false
	}
	switch e.Kind {
	case ast.GreaterThan:
		return ast.NewLiteral(ast.Bool(l.Num > r.Num)), true
	case ast.GreaterThanOrEqual:
		return ast.NewLiteral(ast.Bool(l.Num >= r.Num)), true
	case ast.SmallerThan:
		return ast.NewLiteral(ast.Bool(l.Num < r.Num)), true
	case ast.SmallerThanOrEqual:
		return ast.NewLiteral(ast.Bool(l.Num <= r.Num)), true
	}
	return nil, false
}

// bound describes one side of a range comparison "operand cmp threshold".
type bound struct {
	operand   *ast.Expression
	threshold float64
	isLower   bool // true: operand >= / > threshold. false: operand <= / < threshold.
	inclusive bool
}

func asBound(e *ast.Expression) (bound, bool) {
	lit, ok := asLiteral(e.Right)
	if !ok || !lit.IsNumber() {
		return bound{}, false
	}
	switch e.Kind {
	case ast.GreaterThan:
		return bound{operand: e.Left, threshold: lit.Num, isLower: true, inclusive: false}, true
	case ast.GreaterThanOrEqual:
		return bound{operand: e.Left, threshold: lit.Num, isLower: true, inclusive: true}, true
	case ast.SmallerThan:
		return bound{operand: e.Left, threshold: lit.Num, isLower: false, inclusive: false}, true
	case ast.SmallerThanOrEqual:
		return bound{operand: e.Left, threshold: lit.Num, isLower: false, inclusive: true}, true
	default:
		return bound{}, false
	}
}

// foldContradiction recognizes "x > A AND x < B" (in either operand order)
// with A >= B and collapses it to Literal(false): no number can satisfy
// both a lower bound at or above an upper bound's ceiling. The same holds for
// >= and <= bounds, except that "x >= A AND x <= A" is satisfiable by A and
// is left alone.
func foldContradiction(e *ast.Expression) (*ast.Expression, bool) {
	lb, lok := asBound(e.Left)
	rb, rok := asBound(e.Right)
	if !lok || !rok {
		return nil, false
	}
	if !lb.operand.StructurallyEqual(rb.operand) {
		return nil, false
	}
	if lb.isLower == rb.isLower {
		return nil, false
	}
	lower, upper := lb, rb
	if !lb.isLower {
		lower, upper = rb, lb
	}
	if lower.threshold > upper.threshold ||
		(lower.threshold == upper.threshold && !(lower.inclusive && upper.inclusive)) {
		return ast.NewLiteral(ast.Bool(false)), true
	}
	return nil, false
}
