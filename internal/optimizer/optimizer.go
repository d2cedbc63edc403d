// Package optimizer rewrites a naive per-quality expression tree into its
// smallest semantically-equivalent form: constant folding, boolean
// identities, and range-contradiction dead-code elimination first, then
// common-subexpression elimination turning the tree into a DAG of shared
// definitions. Both passes run to a fixed point, alternating, since merging
// a duplicate subtree under CSE can expose a new identity for its parent to
// fold on the next round (and vice versa) — mirrored from the teacher's
// Optimize pipeline, which likewise reruns constant folding, CSE, and DCE
// until nothing more moves.
package optimizer

import "github.com/hantei-go/hantei/internal/ast"

// maxIterations bounds the alternating fold/CSE loop the way the teacher's
// own constantFolding and commonSubexpressionElimination loops cap their
// iteration counts — a safety net against a rewrite rule that oscillates,
// not an expected case.
const maxIterations = 16

// Optimizer implements builder.Optimizer: it runs fold and CSE passes over
// one quality's expression tree to a joint fixed point.
type Optimizer struct{}

func New() *Optimizer { return &Optimizer{} }

// Run rewrites root to its optimized form, returning the (possibly
// Reference-rooted) result and the CSE definitions table any Reference node
// reachable from it points into.
func (o *Optimizer) Run(root *ast.Expression) (*ast.Expression, map[uint64]*ast.Expression) {
	current := root
	state := newCSEState()

	for i := 0; i < maxIterations; i++ {
		folded, foldChanged := foldPass(current)
		cseRoot, cseChanged := state.runPass(folded)
		current = cseRoot
		if !foldChanged && !cseChanged {
			break
		}
	}

	return current, state.defs
}
