package loop

import (
	"go/ast"
	"go/token"
)

// detectAlias scans the first statement of the body for a declaration that
// binds a new name directly to the element at the current index:
//
//	x := c[i]      (array-index)
//	x := it.Value  (iterator)
//	x := c.At(i)   (pseudo-array)
//
// The alias is reused as the new loop variable and its statement removed
// from the rewrite. It must be a pure alias: the initializer has to be the
// only place the body reaches the index at all, otherwise the remaining
// accesses would bypass the binding and a fresh name is synthesized
// instead. Pointer bindings (x := &c[i]) are not aliases: the element form
// copies, which would silently change what x names.
func detectAlias(p *Pass, cand *Candidate, usages []Usage) *Alias {
	if len(cand.Body.List) == 0 {
		return nil
	}
	as, ok := cand.Body.List[0].(*ast.AssignStmt)
	if !ok || as.Tok != token.DEFINE || len(as.Lhs) != 1 || len(as.Rhs) != 1 {
		return nil
	}
	name, ok := as.Lhs[0].(*ast.Ident)
	if !ok || name.Name == "_" {
		return nil
	}
	rhs := unwrapParen(as.Rhs[0])
	if !isRecordedElement(usages, rhs) {
		return nil
	}

	// Verify purity before marking anything: a mark left behind on the
	// initializer of a rejected alias would exclude it from the rewrite.
	for _, u := range usages {
		if u.Expr.Pos() < as.Pos() || u.Expr.End() > as.End() {
			return nil
		}
	}
	for i := range usages {
		usages[i].InAlias = true
	}
	return &Alias{Name: name.Name, Stmt: as}
}

func isRecordedElement(usages []Usage, expr ast.Expr) bool {
	for _, u := range usages {
		if u.Expr == expr {
			return true
		}
	}
	return false
}
