package interpreter

import (
	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/dynamic"
	flowerr "github.com/hantei-go/hantei/pkg/errors"
)

// RequiredEvents scans a linked (reference-free) tree for Dynamic Input
// leaves and returns the distinct event types it reads from, in no
// particular order — the set the dynamic evaluator must enumerate before
// this tree can run.
func RequiredEvents(expr *ast.Expression, symbols *ast.SymbolTable) []string {
	ids := map[int]struct{}{}
	ast.CollectDynamicIDs(expr, nil, map[uint64]bool{}, ids)

	seen := map[string]struct{}{}
	var events []string
	for id := range ids {
		event := symbols.DynamicKeyOf(id).Event
		if _, ok := seen[event]; !ok {
			seen[event] = struct{}{}
			events = append(events, event)
		}
	}
	return events
}

// Engine evaluates a single linked expression tree against one evaluation
// call's static data and symbol table, producing a trace alongside the
// result value.
type Engine struct {
	symbols *ast.SymbolTable
	static  dynamic.StaticData
}

func NewEngine(symbols *ast.SymbolTable, static dynamic.StaticData) *Engine {
	return &Engine{symbols: symbols, static: static}
}

// Eval walks expr under the given dynamic-instance binding (empty if the
// tree reads no dynamic events) and returns its outcome and trace.
func (e *Engine) Eval(expr *ast.Expression, dyn dynamic.Context) (ast.Value, *ast.EvaluationTrace, error) {
	switch expr.Kind {
	case ast.LiteralExpr:
		return expr.Literal, ast.NewLeafTrace(expr.Literal.String(), expr.Literal), nil

	case ast.InputExpr:
		return e.evalInput(expr, dyn)

	case ast.ReferenceExpr:
		return ast.Value{}, nil, flowerr.NewUnsupportedAstNode("unlinked Reference reached the interpreter")

	case ast.Abs:
		return e.evalAbs(expr, dyn)
	case ast.Not:
		return e.evalNot(expr, dyn)
	case ast.And:
		return e.evalAnd(expr, dyn)
	case ast.Or:
		return e.evalOr(expr, dyn)
	default:
		return e.evalBinary(expr, dyn)
	}
}

func (e *Engine) evalInput(expr *ast.Expression, dyn dynamic.Context) (ast.Value, *ast.EvaluationTrace, error) {
	if expr.Input.FromDynamic {
		key := e.symbols.DynamicKeyOf(expr.Input.ID)
		instance, ok := dyn[key.Event]
		if !ok {
			return ast.Value{}, nil, flowerr.NewInputNotFound(key.Event + "." + key.Field)
		}
		v, ok := instance[key.Field]
		if !ok {
			return ast.Value{}, nil, flowerr.NewInputNotFound(key.Event + "." + key.Field)
		}
		value := ast.Number(v)
		return value, ast.NewLeafTrace("$"+key.Event+"."+key.Field, value), nil
	}

	name := e.symbols.StaticName(expr.Input.ID)
	v, ok := e.static[name]
	if !ok {
		return ast.Value{}, nil, flowerr.NewInputNotFound(name)
	}
	value := ast.Number(v)
	return value, ast.NewLeafTrace("$"+name, value), nil
}

func (e *Engine) evalAbs(expr *ast.Expression, dyn dynamic.Context) (ast.Value, *ast.EvaluationTrace, error) {
	v, trace, err := e.Eval(expr.Left, dyn)
	if err != nil {
		return ast.Value{}, nil, err
	}
	if !v.IsNumber() {
		return ast.Value{}, nil, flowerr.NewTypeMismatch("ABS", "Number", v.KindName())
	}
	n := v.Num
	if n < 0 {
		n = -n
	}
	outcome := ast.Number(n)
	return outcome, ast.NewUnaryTrace("ABS", trace, outcome), nil
}

func (e *Engine) evalNot(expr *ast.Expression, dyn dynamic.Context) (ast.Value, *ast.EvaluationTrace, error) {
	v, trace, err := e.Eval(expr.Left, dyn)
	if err != nil {
		return ast.Value{}, nil, err
	}
	if !v.IsBool() {
		return ast.Value{}, nil, flowerr.NewTypeMismatch("NOT", "Bool", v.KindName())
	}
	outcome := ast.Bool(!v.B)
	return outcome, ast.NewUnaryTrace("NOT", trace, outcome), nil
}

// evalAnd short-circuits: a false left side skips the right entirely,
// recording it as NotEvaluated, matching the spec's short-circuit rule.
func (e *Engine) evalAnd(expr *ast.Expression, dyn dynamic.Context) (ast.Value, *ast.EvaluationTrace, error) {
	lv, lt, err := e.Eval(expr.Left, dyn)
	if err != nil {
		return ast.Value{}, nil, err
	}
	if !lv.IsBool() {
		return ast.Value{}, nil, flowerr.NewTypeMismatch("AND", "Bool", lv.KindName())
	}
	if !lv.B {
		outcome := ast.Bool(false)
		return outcome, ast.NewBinaryTrace("AND", lt, ast.NotEvaluatedTrace(), outcome), nil
	}

	rv, rt, err := e.Eval(expr.Right, dyn)
	if err != nil {
		return ast.Value{}, nil, err
	}
	if !rv.IsBool() {
		return ast.Value{}, nil, flowerr.NewTypeMismatch("AND", "Bool", rv.KindName())
	}
	outcome := ast.Bool(rv.B)
	return outcome, ast.NewBinaryTrace("AND", lt, rt, outcome), nil
}

// evalOr short-circuits: a true left side skips the right entirely.
func (e *Engine) evalOr(expr *ast.Expression, dyn dynamic.Context) (ast.Value, *ast.EvaluationTrace, error) {
	lv, lt, err := e.Eval(expr.Left, dyn)
	if err != nil {
		return ast.Value{}, nil, err
	}
	if !lv.IsBool() {
		return ast.Value{}, nil, flowerr.NewTypeMismatch("OR", "Bool", lv.KindName())
	}
	if lv.B {
		outcome := ast.Bool(true)
		return outcome, ast.NewBinaryTrace("OR", lt, ast.NotEvaluatedTrace(), outcome), nil
	}

	rv, rt, err := e.Eval(expr.Right, dyn)
	if err != nil {
		return ast.Value{}, nil, err
	}
	if !rv.IsBool() {
		return ast.Value{}, nil, flowerr.NewTypeMismatch("OR", "Bool", rv.KindName())
	}
	outcome := ast.Bool(rv.B)
	return outcome, ast.NewBinaryTrace("OR", lt, rt, outcome), nil
}

func (e *Engine) evalBinary(expr *ast.Expression, dyn dynamic.Context) (ast.Value, *ast.EvaluationTrace, error) {
	lv, lt, err := e.Eval(expr.Left, dyn)
	if err != nil {
		return ast.Value{}, nil, err
	}
	rv, rt, err := e.Eval(expr.Right, dyn)
	if err != nil {
		return ast.Value{}, nil, err
	}

	op := expr.Kind.OpSymbol()

	switch expr.Kind {
	case ast.Equal:
		outcome := ast.Bool(lv.Equal(rv))
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	case ast.NotEqual:
		outcome := ast.Bool(!lv.Equal(rv))
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	case ast.Xor:
		if !lv.IsBool() || !rv.IsBool() {
			return ast.Value{}, nil, flowerr.NewTypeMismatch(op, "Bool", mismatchKind(lv, rv))
		}
		outcome := ast.Bool(lv.B != rv.B)
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	}

	if !lv.IsNumber() || !rv.IsNumber() {
		return ast.Value{}, nil, flowerr.NewTypeMismatch(op, "Number", mismatchKind(lv, rv))
	}

	switch expr.Kind {
	case ast.Sum:
		outcome := ast.Number(lv.Num + rv.Num)
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	case ast.Subtract:
		outcome := ast.Number(lv.Num - rv.Num)
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	case ast.Multiply:
		outcome := ast.Number(lv.Num * rv.Num)
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	case ast.Divide:
		outcome := ast.Number(lv.Num / rv.Num)
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	case ast.GreaterThan:
		outcome := ast.Bool(lv.Num > rv.Num)
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	case ast.GreaterThanOrEqual:
		outcome := ast.Bool(lv.Num >= rv.Num)
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	case ast.SmallerThan:
		outcome := ast.Bool(lv.Num < rv.Num)
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	case ast.SmallerThanOrEqual:
		outcome := ast.Bool(lv.Num <= rv.Num)
		return outcome, ast.NewBinaryTrace(op, lt, rt, outcome), nil
	default:
		return ast.Value{}, nil, flowerr.NewUnsupportedAstNode("unknown binary operator kind")
	}
}

func mismatchKind(lv, rv ast.Value) string {
	if !lv.IsNumber() && !lv.IsBool() {
		return lv.KindName()
	}
	if !rv.IsNumber() && !rv.IsBool() {
		return rv.KindName()
	}
	if lv.KindName() != rv.KindName() {
		return lv.KindName() + "/" + rv.KindName()
	}
	return lv.KindName()
}
