// Package hantei is the module's public entry point: a builder that turns
// a recipe source and quality list into a compiled Engine, and the Engine
// itself, which evaluates any number of data bundles against the compiled
// decision flow. It wires together internal/builder (graph lowering and
// optimization) and internal/evaluator (backend compilation and parallel
// dispatch) the same way the teacher's DagEngineBuilder/DagEngine pair
// wires internal/compiler to internal/dag.
package hantei

import (
	"github.com/sirupsen/logrus"

	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/builder"
	"github.com/hantei-go/hantei/internal/dynamic"
	"github.com/hantei-go/hantei/internal/evaluator"
	"github.com/hantei-go/hantei/internal/flow"
	"github.com/hantei-go/hantei/internal/optimizer"
)

// Backend selects the execution backend a compiled Engine uses. The zero
// value is BackendInterpreter.
type Backend = evaluator.Backend

const (
	BackendInterpreter = evaluator.BackendInterpreter
	BackendBytecode    = evaluator.BackendBytecode
)

// EvaluationResult is the outcome of one Engine.Evaluate call.
type EvaluationResult = evaluator.EvaluationResult

// StaticData and Data are the runtime data shapes Evaluate takes: a named
// scalar per static measurement, and an ordered sequence of named-field
// scalar maps per dynamic event type.
type StaticData = dynamic.StaticData
type Data = dynamic.Data
type Instance = dynamic.Instance

// Quality is a named, priority-ranked outcome tied to one input port of the
// flow's setQualityNode.
type Quality = flow.Quality

// NodeParser turns a node's resolved, port-ordered inputs into an
// Expression; see internal/builder.NodeParser for the full contract.
type NodeParser = builder.NodeParser

// EngineBuilder assembles a recipe source, quality list, operator aliases,
// and backend choice into a compiled Engine, mirroring the teacher's
// DagEngineBuilder fluent pattern.
type EngineBuilder struct {
	cb      *builder.CompilerBuilder
	backend Backend
}

// NewEngineBuilder starts an EngineBuilder for a recipe source (typically a
// flow.Definition or an adapter such as flowyaml.Recipe) and its quality
// priority list.
func NewEngineBuilder(source flow.IntoFlow, qualities []Quality) *EngineBuilder {
	return &EngineBuilder{
		cb: builder.Builder(source, qualities).WithOptimizer(optimizer.New()),
	}
}

// WithTypeMapping registers an operation-tag alias, e.g. mapping a
// deployment's authoring-UI vocabulary onto the canonical node types.
func (b *EngineBuilder) WithTypeMapping(userName, canonicalName string) *EngineBuilder {
	b.cb.WithTypeMapping(userName, canonicalName)
	return b
}

// WithCustomParser registers (or overrides) the NodeParser for a canonical
// operation tag.
func (b *EngineBuilder) WithCustomParser(canonicalName string, parser NodeParser) *EngineBuilder {
	b.cb.WithCustomParser(canonicalName, parser)
	return b
}

// WithLogger overrides the logrus logger used during graph lowering.
func (b *EngineBuilder) WithLogger(log *logrus.Logger) *EngineBuilder {
	b.cb.WithLogger(log)
	return b
}

// WithBackend selects the execution backend the built Engine evaluates
// with. Omitted, an Engine defaults to BackendInterpreter.
func (b *EngineBuilder) WithBackend(backend Backend) *EngineBuilder {
	b.backend = backend
	return b
}

// Build compiles the recipe into optimized quality paths and the chosen
// backend's compiled artifact, returning a ready-to-use Engine. Unlike the
// lazy, on-demand caching the teacher's placeholder DagEngine constructors
// describe, compilation here happens eagerly in Build, since the compiler
// and its caches are meant to be discarded once the artifact exists.
func (b *EngineBuilder) Build() (*Engine, error) {
	result, err := b.cb.Build().Compile()
	if err != nil {
		return nil, err
	}
	eval, err := evaluator.New(result, b.backend)
	if err != nil {
		return nil, err
	}
	return &Engine{eval: eval, symbols: result.Symbols}, nil
}

// Engine is an immutable, compiled decision flow: shareable across
// goroutines and able to evaluate any number of data bundles concurrently.
type Engine struct {
	eval    *evaluator.Evaluator
	symbols *ast.SymbolTable
}

// Evaluate runs every compiled quality path against one data bundle and
// returns the lowest-priority quality whose path evaluated true, or a
// result with QualityName == nil ("No quality triggered") if none did.
func (e *Engine) Evaluate(static StaticData, dyn Data) (EvaluationResult, error) {
	return e.eval.Evaluate(static, dyn)
}
