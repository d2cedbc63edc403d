package builder

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/flow"
)

// CompiledPath is one quality's finished, optimizer-pass expression tree,
// carrying both the naive form's name/priority and the definitions table any
// Reference nodes in Expr point into.
type CompiledPath struct {
	Priority int
	Name     string
	Expr     *ast.Expression
	Defs     map[uint64]*ast.Expression
}

// Optimizer is the contract the optimizer package satisfies: run a tree to a
// fixed point, returning the optimized root and the CSE definitions table it
// produced. Declared here, rather than imported directly, so builder stays
// independent of the optimizer's internals — Compile wires the two together.
type Optimizer interface {
	Run(root *ast.Expression) (*ast.Expression, map[uint64]*ast.Expression)
}

// CompilerBuilder assembles the alias map, parser registry, and source
// recipe before producing a Compiler, mirroring the fluent builder-pattern
// entry points used throughout this codebase.
type CompilerBuilder struct {
	source    flow.IntoFlow
	qualities []flow.Quality
	aliases   *AliasMap
	registry  *ParserRegistry
	log       *logrus.Logger
	optimizer Optimizer
}

// Builder starts a CompilerBuilder for a recipe source and its quality
// priority list. source is typically a flow.Definition itself (which
// trivially implements IntoFlow) or an adapter like a YAML recipe loader.
func Builder(source flow.IntoFlow, qualities []flow.Quality) *CompilerBuilder {
	return &CompilerBuilder{
		source:    source,
		qualities: qualities,
		aliases:   NewAliasMap(),
		registry:  DefaultParserRegistry(),
	}
}

// WithTypeMapping registers an operation-tag alias, e.g. mapping a
// deployment's authoring-UI vocabulary onto the canonical node types.
func (b *CompilerBuilder) WithTypeMapping(userName, canonicalName string) *CompilerBuilder {
	b.aliases.Add(userName, canonicalName)
	return b
}

// WithCustomParser registers (or overrides) the NodeParser for a canonical
// operation tag.
func (b *CompilerBuilder) WithCustomParser(canonicalName string, parser NodeParser) *CompilerBuilder {
	b.registry.Register(canonicalName, parser)
	return b
}

// WithLogger overrides the logrus logger used during graph lowering.
func (b *CompilerBuilder) WithLogger(log *logrus.Logger) *CompilerBuilder {
	b.log = log
	return b
}

// WithOptimizer overrides the optimizer pass; omitted defaults to a no-op
// pass that leaves every tree exactly as the graph builder produced it, so a
// caller can construct a Compiler before the optimizer package exists.
func (b *CompilerBuilder) WithOptimizer(opt Optimizer) *CompilerBuilder {
	b.optimizer = opt
	return b
}

func (b *CompilerBuilder) Build() *Compiler {
	opt := b.optimizer
	if opt == nil {
		opt = passthroughOptimizer{}
	}
	return &Compiler{
		source:    b.source,
		qualities: b.qualities,
		aliases:   b.aliases,
		registry:  b.registry,
		log:       b.log,
		optimizer: opt,
	}
}

type passthroughOptimizer struct{}

func (passthroughOptimizer) Run(root *ast.Expression) (*ast.Expression, map[uint64]*ast.Expression) {
	return root, map[uint64]*ast.Expression{}
}

// Compiler converts a recipe source into priority-sorted, optimized quality
// paths ready for either execution backend.
type Compiler struct {
	source    flow.IntoFlow
	qualities []flow.Quality
	aliases   *AliasMap
	registry  *ParserRegistry
	log       *logrus.Logger
	optimizer Optimizer
}

// CompileResult bundles the compiled quality paths (sorted ascending by
// priority) with the symbol table the paths' Input leaves were interned
// against, since every downstream stage needs both together.
type CompileResult struct {
	Paths   []CompiledPath
	Symbols *ast.SymbolTable
}

// Compile converts the recipe, lowers every quality into a naive expression
// tree, optimizes each independently, and sorts the results ascending by
// priority so a parallel evaluator can short-circuit on the first (lowest
// priority number) witness without an extra sort at evaluation time.
func (c *Compiler) Compile() (*CompileResult, error) {
	def, err := c.source.IntoFlow()
	if err != nil {
		return nil, err
	}

	gb := NewGraphBuilder(def, c.aliases, c.registry, c.log)
	naive, err := gb.BuildQualityPaths(c.qualities)
	if err != nil {
		return nil, err
	}

	paths := make([]CompiledPath, 0, len(naive))
	for _, p := range naive {
		optimizedRoot, defs := c.optimizer.Run(p.Expr)
		paths = append(paths, CompiledPath{
			Priority: p.Priority,
			Name:     p.Name,
			Expr:     optimizedRoot,
			Defs:     defs,
		})
	}

	sort.SliceStable(paths, func(i, j int) bool { return paths[i].Priority < paths[j].Priority })

	return &CompileResult{Paths: paths, Symbols: gb.Symbols()}, nil
}
