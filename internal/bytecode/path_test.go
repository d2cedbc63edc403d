package bytecode

import (
	"strings"
	"testing"

	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/dynamic"
)

func TestRequiredEventsScansMainAndSubroutines(t *testing.T) {
	symbols := ast.NewSymbolTable()
	holeID := symbols.InternDynamic("hole", "Diameter")
	beamID := symbols.InternDynamic("beam", "Angle")

	shared := ast.NewGreaterThan(ast.NewInput(ast.DynamicInput(beamID)), ast.NewLiteral(ast.Number(1)))
	defs := map[uint64]*ast.Expression{1: shared}
	root := ast.NewAnd(ast.NewInput(ast.DynamicInput(holeID)), ast.NewReference(1))

	prog, err := NewCompiler().CompileQuality(root, defs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := RequiredEvents(prog, symbols)
	if len(events) != 2 {
		t.Fatalf("expected 2 distinct event types (main + subroutine), got %v", events)
	}
}

func TestPathEvaluateEndToEnd(t *testing.T) {
	symbols := ast.NewSymbolTable()
	id := symbols.InternStatic("Temperature")
	expr := ast.NewGreaterThan(ast.NewInput(ast.StaticInput(id)), ast.NewLiteral(ast.Number(30)))

	path, err := NewPath(0, "Hot", expr, map[uint64]*ast.Expression{}, symbols)
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
	if !strings.Contains(reason, "Hot") {
		t.Errorf("expected the reason to name the quality, got %q", reason)
	}
}

func TestPathEvaluateNonBoolRootIsTypeMismatch(t *testing.T) {
	symbols := ast.NewSymbolTable()
	expr := ast.NewLiteral(ast.Number(1))

	path, err := NewPath(0, "Bad", expr, map[uint64]*ast.Expression{}, symbols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err = path.Evaluate(dynamic.StaticData{}, dynamic.Data{})
	if err == nil {
		t.Fatal("expected a type mismatch when the quality's root does not evaluate to Bool")
	}
}
