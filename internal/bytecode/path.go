package bytecode

import (
	"github.com/hantei-go/hantei/internal/ast"
	"github.com/hantei-go/hantei/internal/dynamic"
	flowerr "github.com/hantei-go/hantei/pkg/errors"
)

// RequiredEvents scans a compiled Program's main block and every subroutine
// it carries for LoadDynamic instructions, returning the distinct event
// types read, in first-seen order. This is the bytecode backend's analog of
// the interpreter's RequiredEvents — it has to inspect instructions instead
// of an expression tree because compilation has already flattened
// References into Call instructions by this point.
func RequiredEvents(prog *Program, symbols *ast.SymbolTable) []string {
	seen := map[string]struct{}{}
	var events []string

	collect := func(ops []Instruction) {
		for _, instr := range ops {
			if instr.Op != OpLoadDynamic {
				continue
			}
			event := symbols.DynamicKeyOf(instr.DynamicID).Event
			if _, ok := seen[event]; !ok {
				seen[event] = struct{}{}
				events = append(events, event)
			}
		}
	}

	collect(prog.Main)
	for _, sub := range prog.Subroutines {
		collect(sub)
	}
	return events
}

// Path is one quality's compiled bytecode artifact: a Program plus the
// event types it needs bound before it can run. Like interpreter.Path, it
// is immutable and safe to evaluate concurrently — Evaluate allocates a
// fresh VM (backed by the pooled frame in pool.go) per dynamic-instance
// binding.
type Path struct {
	Priority int
	Name     string

	symbols        *ast.SymbolTable
	program        *Program
	requiredEvents []string
}

// NewPath compiles an optimized (possibly Reference-bearing) expression
// tree into a Program and precomputes the dynamic event types it reads.
func NewPath(priority int, name string, root *ast.Expression, defs map[uint64]*ast.Expression, symbols *ast.SymbolTable) (*Path, error) {
	prog, err := NewCompiler().CompileQuality(root, defs)
	if err != nil {
		return nil, err
	}
	return &Path{
		Priority:       priority,
		Name:           name,
		symbols:        symbols,
		program:        prog,
		requiredEvents: RequiredEvents(prog, symbols),
	}, nil
}

// Evaluate runs this quality's program against one call's static data and
// dynamic event streams. Unlike the interpreter backend, the VM carries no
// trace, so a triggered quality's reason string names the quality rather
// than quoting the decisive sub-term.
func (p *Path) Evaluate(static dynamic.StaticData, dyn dynamic.Data) (bool, string, error) {
	result, _, err := dynamic.Search(p.requiredEvents, dyn, func(ctx dynamic.Context) (ast.Value, any, error) {
		vm := NewVM(p.symbols, static, ctx)
		v, err := vm.Run(p.program)
		if err != nil {
			return ast.Value{}, nil, err
		}
		return v, nil, nil
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
	return true, "quality " + p.Name + " triggered (bytecode backend, no trace available)", nil
}
