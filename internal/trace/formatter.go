// Package trace turns an interpreter EvaluationTrace into the short,
// human-readable "reason" string reported alongside a triggered quality.
// There is no teacher analog for this concern — the original language this
// system was ported from carries a dedicated formatter module, and this
// package is a direct, idiom-adapted port of its exact decisive-reason and
// precedence rules.
package trace

import (
	"strings"

	"github.com/hantei-go/hantei/internal/ast"
)

// Format reduces t to its decisive sub-terms joined by " AND ", falling
// back to the full precedence-parenthesized expression when no sub-term is
// independently decisive (e.g. a bare leaf or a non-And/Or decisive node).
func Format(t *ast.EvaluationTrace) string {
	var reasons []string
	collectDecisiveReasons(t, &reasons)
	if len(reasons) == 0 {
		return formatFullExpression(t)
	}
	return strings.Join(reasons, " AND ")
}

// collectDecisiveReasons recurses only into the side(s) of an And/Or that
// actually determined the outcome, matching the original formatter's
// branch-by-branch logic exactly:
//   - And true: both sides mattered (both must have been true).
//   - And false: whichever side is false decided it; prefer left if both.
//   - Or true: whichever side is true decided it; prefer left if both.
//   - Or false: both sides mattered (both must have been false).
//   - Any other decisive node: format it whole.
func collectDecisiveReasons(t *ast.EvaluationTrace, reasons *[]string) {
	if t.Kind == ast.TraceBinaryOp && (t.OpSymbol == "AND" || t.OpSymbol == "OR") {
		outcome := t.GetOutcome()
		switch {
		case t.OpSymbol == "AND" && outcome.IsBool() && outcome.B:
			collectDecisiveReasons(t.Left, reasons)
			collectDecisiveReasons(t.Right, reasons)
			return
		case t.OpSymbol == "AND" && outcome.IsBool() && !outcome.B:
			if lo := t.Left.GetOutcome(); lo.IsBool() && !lo.B {
				collectDecisiveReasons(t.Left, reasons)
			} else {
				collectDecisiveReasons(t.Right, reasons)
			}
			return
		case t.OpSymbol == "OR" && outcome.IsBool() && outcome.B:
			if lo := t.Left.GetOutcome(); lo.IsBool() && lo.B {
				collectDecisiveReasons(t.Left, reasons)
			} else {
				collectDecisiveReasons(t.Right, reasons)
			}
			return
		case t.OpSymbol == "OR" && outcome.IsBool() && !outcome.B:
			collectDecisiveReasons(t.Left, reasons)
			collectDecisiveReasons(t.Right, reasons)
			return
		}
	}

	formatted := formatFullExpression(t)
	if formatted != "" {
		*reasons = append(*reasons, formatted)
	}
}

func formatFullExpression(t *ast.EvaluationTrace) string {
	return formatRecursive(t, 0)
}

func formatRecursive(t *ast.EvaluationTrace, parentPrecedence uint8) string {
	precedence := t.Precedence()
	needsParens := precedence < parentPrecedence

	var b strings.Builder
	if needsParens {
		b.WriteByte('(')
	}

	switch t.Kind {
	case ast.TraceBinaryOp:
		left := formatRecursive(t.Left, precedence)
		if t.Right != nil && t.Right.Kind != ast.TraceNotEvaluated {
			right := formatRecursive(t.Right, precedence)
			b.WriteString(left)
			b.WriteByte(' ')
			b.WriteString(t.OpSymbol)
			b.WriteByte(' ')
			b.WriteString(right)
		} else {
			b.WriteString(left)
		}

	case ast.TraceUnaryOp:
		child := formatRecursive(t.Left, precedence)
		b.WriteString(t.OpSymbol)
		b.WriteByte(' ')
		b.WriteString(child)

	case ast.TraceLeaf:
		if strings.HasPrefix(t.Source, "$") {
			b.WriteString(t.Source)
			b.WriteString(" (was ")
			b.WriteString(t.Value.String())
			b.WriteByte(')')
		} else {
			b.WriteString(t.Source)
		}

	case ast.TraceNotEvaluated:
		// renders as nothing
	}

	if needsParens {
		b.WriteByte(')')
	}
	return b.String()
}
