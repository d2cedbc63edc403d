package interpreter

import (
	"testing"

	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/dynamic"
)

func TestEngineEvalStaticThreshold(t *testing.T) {
	symbols := ast.NewSymbolTable()
	id := symbols.InternStatic("Temperature")
	expr := ast.NewGreaterThan(ast.NewInput(ast.StaticInput(id)), ast.NewLiteral(ast.Number(30)))

	engine := NewEngine(symbols, dynamic.StaticData{"Temperature": 42})
	v, tr, err := engine.Eval(expr, dynamic.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsBool() || !v.B {
		t.Errorf("expected true, got %+v", v)
	}
	if tr == nil {
		t.Error("expected a non-nil trace")
	}
}

func TestEngineEvalAndShortCircuitsSkipsRightSide(t *testing.T) {
	symbols := ast.NewSymbolTable()
	expr := ast.NewAnd(ast.NewLiteral(ast.Bool(false)), ast.NewInput(ast.StaticInput(0)))

	engine := NewEngine(symbols, dynamic.StaticData{})
	v, tr, err := engine.Eval(expr, dynamic.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v (right side should never be evaluated)", err)
	}
	if v.IsBool() != true || v.B != false {
		t.Errorf("expected false, got %+v", v)
	}
	if tr.Right.Kind != ast.TraceNotEvaluated {
		t.Error("expected the skipped right side to be recorded as NotEvaluated")
	}
}

func TestEngineEvalOrShortCircuitsSkipsRightSide(t *testing.T) {
	symbols := ast.NewSymbolTable()
	expr := ast.NewOr(ast.NewLiteral(ast.Bool(true)), ast.NewInput(ast.StaticInput(0)))

	engine := NewEngine(symbols, dynamic.StaticData{})
	v, tr, err := engine.Eval(expr, dynamic.Context{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !v.IsBool() || !v.B {
		t.Errorf("expected true, got %+v", v)
	}
	if tr.Right.Kind != ast.TraceNotEvaluated {
		t.Error("expected the skipped right side to be recorded as NotEvaluated")
	}
}

func TestEngineEvalTypeMismatch(t *testing.T) {
	symbols := ast.NewSymbolTable()
	expr := ast.NewAnd(ast.NewLiteral(ast.Number(1)), ast.NewLiteral(ast.Bool(true)))

	engine := NewEngine(symbols, dynamic.StaticData{})
	_, _, err := engine.Eval(expr, dynamic.Context{})
	if err == nil {
		t.Fatal("expected a type mismatch error when AND's left side is not Bool")
	}
}

func TestEngineEvalMissingStaticInput(t *testing.T) {
	symbols := ast.NewSymbolTable()
	id := symbols.InternStatic("Temperature")
	expr := ast.NewInput(ast.StaticInput(id))

	engine := NewEngine(symbols, dynamic.StaticData{})
	_, _, err := engine.Eval(expr, dynamic.Context{})
	if err == nil {
		t.Fatal("expected an error when the static measurement is absent")
	}
}

func TestPathEvaluateEndToEnd(t *testing.T) {
	symbols := ast.NewSymbolTable()
	id := symbols.InternStatic("Temperature")
	expr := ast.NewGreaterThan(ast.NewInput(ast.StaticInput(id)), ast.NewLiteral(ast.Number(30)))

	path, err := NewPath(0, "hot", expr, map[uint64]*ast.Expression{}, symbols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, reason, err := path.Evaluate(dynamic.StaticData{"Temperature": 42}, dynamic.Data{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected the path to trigger")
	}
	if reason == "" {
		t.Error("expected a non-empty reason string")
	}
}

func TestPathEvaluateFalseHasNoReason(t *testing.T) {
	symbols := ast.NewSymbolTable()
	id := symbols.InternStatic("Temperature")
	expr := ast.NewGreaterThan(ast.NewInput(ast.StaticInput(id)), ast.NewLiteral(ast.Number(100)))

	path, err := NewPath(0, "hot", expr, map[uint64]*ast.Expression{}, symbols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, reason, err := path.Evaluate(dynamic.StaticData{"Temperature": 42}, dynamic.Data{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("did not expect the path to trigger")
	}
	if reason != "" {
		t.Errorf("expected no reason when the path does not trigger, got %q", reason)
	}
}
