package loop

import (
	"go/ast"
	"go/types"

	tt "github.com/modernlint/loopconv/internal/types"
)

// evaluate scores the safety of the rewrite from the evidence gathered by
// the earlier stages.
//
// Safe: the container is a plain variable or member access, element
// accesses resolve, and no statement touches the element more than once.
//
// Reasonable: the container expression involves a call (its evaluation
// count changes from once per iteration to once before the loop), the
// element type is a pointer (copy vs reference semantics blur), or one
// statement holds several element accesses.
//
// Risky: the container is spelled differently across occurrences even
// though it resolves to the same object, or elements are reached through
// an accessor the type information could not resolve.
func evaluate(p *Pass, cand *Candidate, usages []Usage) tt.Confidence {
	if cand.Cont.TextDrift || cand.UnknownAccess {
		return tt.ConfidenceRisky
	}
	if containsCall(cand.Cont.Expr) {
		return tt.ConfidenceReasonable
	}
	if cand.Cont.Elem != nil {
		if _, ok := cand.Cont.Elem.Underlying().(*types.Pointer); ok {
			return tt.ConfidenceReasonable
		}
	}
	if maxAccessesPerStmt(usages) > 1 {
		return tt.ConfidenceReasonable
	}
	return tt.ConfidenceSafe
}

func containsCall(expr ast.Expr) bool {
	found := false
	ast.Inspect(expr, func(n ast.Node) bool {
		if _, ok := n.(*ast.CallExpr); ok {
			found = true
			return false
		}
		return true
	})
	return found
}

func maxAccessesPerStmt(usages []Usage) int {
	counts := make(map[int]int)
	max := 0
	for _, u := range usages {
		counts[u.StmtIdx]++
		if counts[u.StmtIdx] > max {
			max = counts[u.StmtIdx]
		}
	}
	return max
}
