// Package interpreter is the tree-walking execution backend: it links an
// optimized expression DAG back into a reference-free tree, then walks it
// producing an EvaluationTrace alongside the result.
package interpreter

import (
	"github.com/hantei-go/hantei/internal/ast"
	flowerr "github.com/hantei-go/hantei/pkg/errors"
)

// Link inlines every Reference(id) in expr by substituting the definitions
// table entry it names, recursively, memoized per id within this single
// pass so a sub-DAG referenced from several places is only expanded once
// per link call. A dangling reference (an id with no definitions-table
// entry) is a compile-time InvalidLogic error — CSE never produces one, but
// a hand-built or corrupted definitions table might.
func Link(expr *ast.Expression, defs map[uint64]*ast.Expression) (*ast.Expression, error) {
	return linkWith(expr, defs, make(map[uint64]*ast.Expression))
}

func linkWith(expr *ast.Expression, defs, cache map[uint64]*ast.Expression) (*ast.Expression, error) {
	if expr == nil {
		return nil, nil
	}

	switch expr.Kind {
	case ast.LiteralExpr, ast.InputExpr:
		return expr, nil

	case ast.ReferenceExpr:
		if linked, ok := cache[expr.RefID]; ok {
			return linked, nil
		}
		def, ok := defs[expr.RefID]
		if !ok {
			return nil, flowerr.NewInvalidLogic("dangling reference to undefined id")
		}
		linked, err := linkWith(def, defs, cache)
		if err != nil {
			return nil, err
		}
		cache[expr.RefID] = linked
		return linked, nil

	case ast.Abs, ast.Not:
		child, err := linkWith(expr.Left, defs, cache)
		if err != nil {
			return nil, err
		}
		return &ast.Expression{Kind: expr.Kind, Left: child}, nil

	default:
		left, err := linkWith(expr.Left, defs, cache)
		if err != nil {
			return nil, err
		}
		right, err := linkWith(expr.Right, defs, cache)
		if err != nil {
			return nil, err
		}
		return &ast.Expression{Kind: expr.Kind, Left: left, Right: right}, nil
	}
}
