// Package evaluator ties the compiler's priority-sorted quality paths to a
// chosen execution backend and runs them concurrently against one data
// bundle, reconciling the results to the lowest-priority witness.
package evaluator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/builder"
	"github.com/hantei-go/hantei/internal/bytecode"
	"github.com/hantei-go/hantei/internal/dynamic"
	"github.com/hantei-go/hantei/internal/interpreter"
)

// Backend selects which compiled-artifact shape a quality path takes: the
// tree-walking interpreter (with its evaluation trace) or the register VM
// (faster, traceless).
type Backend int

const (
	BackendInterpreter Backend = iota
	BackendBytecode
)

// evaluablePath is the contract both interpreter.Path and bytecode.Path
// satisfy, letting Evaluator stay backend-agnostic.
type evaluablePath interface {
	Evaluate(static dynamic.StaticData, dyn dynamic.Data) (bool, string, error)
}

type compiledPath struct {
	priority int
	name     string
	path     evaluablePath
}

// Evaluator holds every quality's compiled path for a single backend,
// ready to evaluate any number of data bundles concurrently. It is
// immutable and safe for concurrent use once constructed.
type Evaluator struct {
	paths []compiledPath
}

// New compiles result's priority-sorted quality paths into backend's
// artifact shape. result.Paths is already sorted ascending by priority (see
// builder.Compiler.Compile), and Evaluator relies on that order to
// reconcile concurrent witnesses to the lowest-priority one without
// re-sorting.
func New(result *builder.CompileResult, backend Backend) (*Evaluator, error) {
	paths := make([]compiledPath, 0, len(result.Paths))
	for _, p := range result.Paths {
		ep, err := compilePath(p, result.Symbols, backend)
		if err != nil {
			return nil, err
		}
		paths = append(paths, compiledPath{priority: p.Priority, name: p.Name, path: ep})
	}
	return &Evaluator{paths: paths}, nil
}

func compilePath(p builder.CompiledPath, symbols *ast.SymbolTable, backend Backend) (evaluablePath, error) {
	if backend == BackendBytecode {
		return bytecode.NewPath(p.Priority, p.Name, p.Expr, p.Defs, symbols)
	}
	return interpreter.NewPath(p.Priority, p.Name, p.Expr, p.Defs, symbols)
}

// EvaluationResult is the dispatcher's output: the name and priority of the
// lowest-priority quality whose path evaluated true, or nil/nil with a
// fixed reason string when nothing triggered.
type EvaluationResult struct {
	QualityName     *string
	QualityPriority *int
	Reason          string
}

type witness struct {
	priority int
	name     string
	reason   string
}

// Evaluate dispatches every quality path concurrently inside an
// errgroup.Group: the first path to report a fatal evaluation error
// cancels the shared context, and that error becomes the overall result, as
// the design calls for (a fatal error in any path is the evaluation's
// result; other in-flight paths are left to finish and their results
// discarded). Successful witnesses land in a slot indexed by the path's
// position in the priority-sorted list, so scanning that slice in order
// after the group completes is equivalent to picking the minimum priority
// across every reported success — no re-sort needed.
func (e *Evaluator) Evaluate(static dynamic.StaticData, dyn dynamic.Data) (EvaluationResult, error) {
	hits := make([]*witness, len(e.paths))

	g, ctx := errgroup.WithContext(context.Background())
	for i, p := range e.paths {
		i, p := i, p
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			ok, reason, err := p.path.Evaluate(static, dyn)
			if err != nil {
				return err
			}
			if ok {
				hits[i] = &witness{priority: p.priority, name: p.name, reason: reason}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return EvaluationResult{}, err
	}

	for _, w := range hits {
		if w == nil {
			continue
		}
		name := w.name
		priority := w.priority
		return EvaluationResult{QualityName: &name, QualityPriority: &priority, Reason: w.reason}, nil
	}
	return EvaluationResult{Reason: "No quality triggered"}, nil
}
