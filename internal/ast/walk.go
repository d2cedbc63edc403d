package ast

// CollectDynamicIDs walks expr and records the id of every Dynamic Input
// leaf it finds into ids. defs resolves Reference nodes when expr has not
// been linked yet (pass nil once references have already been inlined);
// visited guards against revisiting the same reference twice within one
// scan, mirroring the per-pass memoization the linker itself uses.
func CollectDynamicIDs(expr *Expression, defs map[uint64]*Expression, visited map[uint64]bool, ids map[int]struct{}) {
	if expr == nil {
		return
	}
	switch expr.Kind {
	case InputExpr:
		if expr.Input.FromDynamic {
			ids[expr.Input.ID] = struct{}{}
		}
	case LiteralExpr:
		// no-op
	case ReferenceExpr:
		if visited[expr.RefID] {
			return
		}
		visited[expr.RefID] = true
		if defs != nil {
			CollectDynamicIDs(defs[expr.RefID], defs, visited, ids)
		}
	case Abs, Not:
		CollectDynamicIDs(expr.Left, defs, visited, ids)
	default:
		CollectDynamicIDs(expr.Left, defs, visited, ids)
		CollectDynamicIDs(expr.Right, defs, visited, ids)
	}
}
