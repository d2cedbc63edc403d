package interpreter

import (
	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/dynamic"
	"github.com/hantei-go/hantei/internal/trace"
	flowerr "github.com/hantei-go/hantei/pkg/errors"
)

// Path is one quality's compiled interpreter artifact: a reference-free,
// linked expression tree plus the event types it needs bound before it can
// run. Path is immutable and safe to evaluate concurrently from any number
// of goroutines, since Evaluate allocates its own Engine per call.
type Path struct {
	Priority int
	Name     string

	symbols        *ast.SymbolTable
	linked         *ast.Expression
	requiredEvents []string
}

// NewPath links an optimized (possibly Reference-bearing) expression tree
// against its definitions table and precomputes the dynamic event types it
// reads, so every Evaluate call skips straight to binding and walking.
func NewPath(priority int, name string, root *ast.Expression, defs map[uint64]*ast.Expression, symbols *ast.SymbolTable) (*Path, error) {
	linked, err := Link(root, defs)
	if err != nil {
		return nil, err
	}
	return &Path{
		Priority:       priority,
		Name:           name,
		symbols:        symbols,
		linked:         linked,
		requiredEvents: RequiredEvents(linked, symbols),
	}, nil
}

// Evaluate runs this quality's expression against one call's static data
// and dynamic event streams, returning whether it triggered and, if so, the
// decisive-reason string the trace formatter extracted from the witnessing
// binding.
func (p *Path) Evaluate(static dynamic.StaticData, dyn dynamic.Data) (bool, string, error) {
	engine := NewEngine(p.symbols, static)

	result, extra, err := dynamic.Search(p.requiredEvents, dyn, func(ctx dynamic.Context) (ast.Value, any, error) {
		v, tr, err := engine.Eval(p.linked, ctx)
		if err != nil {
			return ast.Value{}, nil, err
		}
		return v, tr, nil
	})
	if err != nil {
		return false, "", err
	}
	if !result.IsBool() {
		return false, "", flowerr.NewTypeMismatch(p.Name, "Bool", result.KindName())
	}
	if !result.B {
		return false, "", nil
	}

	tr, _ := extra.(*ast.EvaluationTrace)
	if tr == nil {
		return true, "", nil
	}
	return true, trace.Format(tr), nil
}
