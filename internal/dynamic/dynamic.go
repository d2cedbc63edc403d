// Package dynamic implements the cross-product search over dynamic-event
// instances shared by both execution backends: the tree-walking interpreter
// and the register VM each supply their own per-context evaluation
// callback, but the enumeration strategy — smallest-set-first pruning,
// depth-first Cartesian product, first-witness short-circuit — is identical
// either way, so it lives here once rather than being duplicated per
// backend.
package dynamic

import (
	"sort"

	"github.com/hantei-go/hantei/internal/ast"
)

// StaticData maps a static measurement name to its value for one
// evaluation call. It lives alongside Instance/Data here rather than in its
// own package since all three are exactly the external per-call runtime
// data every backend reads from.
type StaticData map[string]float64

// Instance is one event occurrence: a named-field scalar map.
type Instance map[string]float64

// Data maps an event type to its ordered list of instances for one
// evaluation call.
type Data map[string][]Instance

// Context binds each required event type to the instance currently under
// consideration during cross-product enumeration.
type Context map[string]Instance

// EvalFunc evaluates an expression under a fully-bound Context. extra
// carries whatever backend-specific detail the caller wants threaded
// through the witness (an EvaluationTrace for the interpreter; nil for the
// VM, which has no trace).
type EvalFunc func(ctx Context) (result ast.Value, extra any, err error)

// Search enumerates every required event type's instances depth-first,
// smallest set first, and returns on the first binding that evaluates to
// Bool(true). If any required event type is present in requiredEvents but
// has zero instances in data, the search fails immediately without calling
// eval — matching the zero-instance pruning rule. An empty requiredEvents
// list evaluates eval exactly once, with an empty Context.
func Search(requiredEvents []string, data Data, eval EvalFunc) (ast.Value, any, error) {
	events := make([]string, len(requiredEvents))
	copy(events, requiredEvents)
	sort.Slice(events, func(i, j int) bool {
		return len(data[events[i]]) < len(data[events[j]])
	})

	for _, e := range events {
		if len(data[e]) == 0 {
			return ast.Bool(false), nil, nil
		}
	}

	return searchLevel(events, 0, data, make(Context, len(events)), eval)
}

func searchLevel(events []string, idx int, data Data, ctx Context, eval EvalFunc) (ast.Value, any, error) {
	if idx == len(events) {
		return eval(ctx)
	}
	event := events[idx]
	for _, inst := range data[event] {
		ctx[event] = inst
		result, extra, err := searchLevel(events, idx+1, data, ctx, eval)
		if err != nil {
			return ast.Value{}, nil, err
		}
		if result.IsBool() && result.B {
			return result, extra, nil
		}
	}
	return ast.Bool(false), nil, nil
}
