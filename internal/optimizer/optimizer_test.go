package optimizer

import (
	"testing"

	"github.com/hantei-go/hantei/internal/ast"
)

func numIn(id int) *ast.Expression  { return ast.NewInput(ast.StaticInput(id)) }
func lit(v float64) *ast.Expression { return ast.NewLiteral(ast.Number(v)) }
func litB(b bool) *ast.Expression   { return ast.NewLiteral(ast.Bool(b)) }

func TestFoldArithmetic(t *testing.T) {
	expr := ast.NewSum(lit(2), lit(3))
	out, changed := foldPass(expr)
	if !changed {
		t.Fatal("expected a change")
	}
	if out.Kind != ast.LiteralExpr || out.Literal.Num != 5 {
		t.Errorf("expected literal 5, got %+v", out)
	}
}

func TestFoldAndIdentityTrue(t *testing.T) {
	// And(true, x) folds to x.
	expr := ast.NewAnd(litB(true), numIn(0))
	out, changed := foldPass(expr)
	if !changed {
		t.Fatal("expected a change")
	}
	if out.Kind != ast.InputExpr {
		t.Errorf("expected the bare input leaf, got kind %v", out.Kind)
	}
}

func TestFoldAndIdentityFalse(t *testing.T) {
	// And(false, x) folds to false regardless of x.
	expr := ast.NewAnd(litB(false), numIn(0))
	out, changed := foldPass(expr)
	if !changed {
		t.Fatal("expected a change")
	}
	if out.Kind != ast.LiteralExpr || out.Literal.B != false {
		t.Errorf("expected literal false, got %+v", out)
	}
}

func TestFoldOrIdentity(t *testing.T) {
	expr := ast.NewOr(litB(false), numIn(0))
	out, changed := foldPass(expr)
	if !changed {
		t.Fatal("expected a change")
	}
	if out.Kind != ast.InputExpr {
		t.Errorf("expected the bare input leaf, got kind %v", out.Kind)
	}
}

func TestFoldContradictionCollapsesToFalse(t *testing.T) {
	x := numIn(0)
	// x > 10 AND x < 5: no value satisfies both.
	expr := ast.NewAnd(ast.NewGreaterThan(x, lit(10)), ast.NewSmallerThan(x, lit(5)))
	out, changed := foldPass(expr)
	if !changed {
		t.Fatal("expected contradiction to be detected")
	}
	if out.Kind != ast.LiteralExpr || out.Literal.B != false {
		t.Errorf("expected literal false, got %+v", out)
	}
}

func TestFoldContradictionDoesNotFireOnSatisfiableRange(t *testing.T) {
	x := numIn(0)
	// x > 5 AND x < 10: satisfiable, must not be folded away.
	expr := ast.NewAnd(ast.NewGreaterThan(x, lit(5)), ast.NewSmallerThan(x, lit(10)))
	out, changed := foldPass(expr)
	if changed {
		t.Fatalf("did not expect a fold, got %+v", out)
	}
}

func TestFoldContradictionRequiresSameOperand(t *testing.T) {
	// x > 10 AND y < 5: different operands, not a contradiction.
	expr := ast.NewAnd(ast.NewGreaterThan(numIn(0), lit(10)), ast.NewSmallerThan(numIn(1), lit(5)))
	_, changed := foldPass(expr)
	if changed {
		t.Error("did not expect a fold across unrelated operands")
	}
}

func TestCSEMergesDuplicateSubtrees(t *testing.T) {
	shared := ast.NewGreaterThan(numIn(0), lit(100))
	expr := ast.NewAnd(shared, ast.NewGreaterThan(numIn(0), lit(100)))

	state := newCSEState()
	root, changed := state.runPass(expr)
	if !changed {
		t.Fatal("expected the duplicate right-hand side to be merged")
	}
	if root.Right.Kind != ast.ReferenceExpr {
		t.Errorf("expected right child to become a Reference, got kind %v", root.Right.Kind)
	}
	if _, ok := state.defs[root.Right.RefID]; !ok {
		t.Error("expected a definitions table entry for the reused subtree")
	}
}

func TestCSEStatePersistsAcrossPasses(t *testing.T) {
	// Simulates what the alternating fold/CSE loop does: the first pass
	// leaves one occurrence inline (the "first sighting"), and a later
	// pass re-traverses the same unchanged subtree. It must resolve to the
	// very same id rather than a fresh counter starting back at 0, or the
	// second pass's definitions table would not contain the id the first
	// pass's Reference already points to.
	shared := ast.NewGreaterThan(numIn(0), lit(100))
	other := ast.NewGreaterThan(numIn(1), lit(7))

	state := newCSEState()
	root1, _ := state.runPass(ast.NewAnd(shared, other))
	// root1.Left is the inline first-sighting of `shared` (unwrapped), with
	// its own assigned id already recorded in state.defs.
	firstID := -1
	for id, def := range state.defs {
		if def.StructurallyEqual(shared) {
			firstID = int(id)
		}
	}
	if firstID < 0 {
		t.Fatal("expected shared subtree to be registered on the first pass")
	}

	// A later pass re-sees the exact same inline subtree (root1.Left) as
	// part of a new tree shape; it must become a Reference to the same id.
	root2, changed := state.runPass(ast.NewOr(root1.Left, ast.NewLiteral(ast.Bool(false))))
	if !changed {
		t.Fatal("expected the re-sighted subtree to be merged into a Reference")
	}
	if root2.Left.Kind != ast.ReferenceExpr || int(root2.Left.RefID) != firstID {
		t.Errorf("expected Reference(%d), got %+v", firstID, root2.Left)
	}
}

func TestOptimizerRunReachesFixedPoint(t *testing.T) {
	x := numIn(0)
	expr := ast.NewAnd(ast.NewGreaterThan(x, lit(10)), ast.NewSmallerThan(x, lit(5)))

	opt := New()
	root, defs := opt.Run(expr)

	if root.Kind != ast.LiteralExpr || root.Literal.B != false {
		t.Errorf("expected the contradiction to fold to false, got %+v", root)
	}
	if len(defs) != 0 {
		t.Errorf("expected no definitions once the whole tree collapses to a leaf literal, got %d", len(defs))
	}
}
