package optimizer

import (
	"github.com/cespare/xxhash/v2"

	"github.com/hantei-go/hantei/internal/ast"
)

// cseState tracks, across every CSE pass of one quality's optimization run,
// which structural signatures have already been seen and assigns each a
// stable Reference id on first sight. The definitions table records only
// the first occurrence of each shape — every later occurrence, whether in
// the same pass or a later one, is replaced by a Reference into it — so the
// result is a DAG, not a tree, with exactly one definition per distinct
// sub-computation. The state is intentionally carried across the
// optimizer's alternating fold/CSE iterations (not reset per pass): a
// subtree left inline because it was the first sighting in pass 1 must still
// resolve to the very same id if pass 2 sees it again, otherwise its id
// would collide with an unrelated definition minted fresh by a reset
// counter — the definitions table a Reference is checked against must be
// the same table across the whole run.
type cseState struct {
	seen    map[uint64]uint64 // signature hash -> assigned id
	defs    map[uint64]*ast.Expression
	nextID  uint64
	changed bool
}

func newCSEState() *cseState {
	return &cseState{
		seen: make(map[uint64]uint64),
		defs: make(map[uint64]*ast.Expression),
	}
}

func signatureHash(e *ast.Expression) uint64 {
	return xxhash.Sum64String(e.Signature())
}

// cse performs one post-order hash-consing pass: children are processed
// (and possibly replaced with References) before their parent's own
// signature is computed, so a Reference swapped in for a repeated child
// changes the parent's signature exactly the way the repeated subtree would
// have, keeping equivalent parents mergeable too.
func (s *cseState) cse(expr *ast.Expression) *ast.Expression {
	if expr == nil {
		return nil
	}
	// Leaves are cheap enough that wrapping them in a Reference would only
	// add indirection, and doing so would also change a compound parent's
	// signature between its first and later occurrences (a Reference's
	// signature is "ref(id)", not the leaf's own shape) and defeat parent-
	// level merging. Only compound sub-expressions get hash-consed.
	if expr.Kind == ast.LiteralExpr || expr.Kind == ast.InputExpr || expr.Kind == ast.ReferenceExpr {
		return expr
	}

	left := s.cse(expr.Left)
	var right *ast.Expression
	if expr.Right != nil {
		right = s.cse(expr.Right)
	}
	rebuilt := rebuild(expr.Kind, left, right)
	return s.register(rebuilt)
}

func (s *cseState) register(expr *ast.Expression) *ast.Expression {
	h := signatureHash(expr)
	if id, ok := s.seen[h]; ok {
		s.changed = true
		return ast.NewReference(id)
	}
	id := s.nextID
	s.nextID++
	s.seen[h] = id
	s.defs[id] = expr
	return expr
}

// runPass runs one CSE pass over root against this state's accumulated
// history, returning the resulting root (itself rewritten to a Reference
// only if it happens to duplicate an already-registered subtree) and
// whether anything was merged this pass. s.defs accumulates the
// definitions table backing every Reference anywhere in the result across
// every pass run against this state.
func (s *cseState) runPass(root *ast.Expression) (*ast.Expression, bool) {
	s.changed = false
	newRoot := s.cse(root)
	return newRoot, s.changed
}
