package loop

import (
	"go/ast"
	"go/token"
	"go/types"
)

// collectUsages walks every statement of the loop body in source order and
// records a Usage for each element expression built from the index or
// cursor. The loop is rejected when the index escapes the supported
// patterns: its value observed on its own, its address taken, arithmetic
// on it, capture by a closure, or use inside a nested loop. A body that
// rebinds the container itself is rejected up front.
//
// A mismatch between the bound's container and the container the body
// actually accesses is a classification failure, not a usage conflict.
func collectUsages(p *Pass, cand *Candidate) ([]Usage, RejectReason) {
	if containerMutated(p, cand) {
		return nil, RejectUsageConflict
	}

	var usages []Usage

	for stmtIdx, stmt := range cand.Body.List {
		parents := parentMap(stmt)
		consumed := make(map[*ast.Ident]bool)
		reason := RejectNone

		ast.Inspect(stmt, func(n ast.Node) bool {
			if reason != RejectNone {
				return false
			}
			expr, idxIdent, ok := matchElement(p, cand, n)
			if !ok {
				return true
			}
			if idxIdent != nil {
				consumed[idxIdent] = true
			}
			if expr == nil {
				// Recognized but unrewritable access (unresolved
				// accessor); the index form keeps it intact.
				return true
			}
			kind, conflict := elementContext(p, parents, expr)
			if conflict != RejectNone {
				reason = conflict
				return false
			}
			usages = append(usages, Usage{
				Expr:    expr,
				Kind:    kind,
				StmtIdx: stmtIdx,
				Nested:  insideNestedLoop(parents, expr),
			})
			return true
		})
		if reason != RejectNone {
			return nil, reason
		}

		// Any remaining reference to the index outside a recorded element
		// expression observes the index itself.
		stray := RejectNone
		ast.Inspect(stmt, func(n ast.Node) bool {
			if stray != RejectNone {
				return false
			}
			id, ok := n.(*ast.Ident)
			if !ok || consumed[id] || !p.sameVar(id, cand.Index.Obj) {
				return true
			}
			stray = RejectUsageConflict
			return false
		})
		if stray != RejectNone {
			return nil, stray
		}
	}

	// Uses inside a nested loop invalidate the simple rewrite: the inner
	// loop re-traverses while the outer element binding stays fixed.
	for _, u := range usages {
		if u.Nested {
			return nil, RejectUsageConflict
		}
	}

	return usages, RejectNone
}

// matchElement recognizes one element expression rooted at n. It returns
// the expression, the index identifier it consumes, and whether n matched
// at all. A (nil, ident, true) return marks a consumed but unrewritable
// access.
func matchElement(p *Pass, cand *Candidate, n ast.Node) (ast.Expr, *ast.Ident, bool) {
	switch cand.Kind {
	case KindArrayIndex:
		ix, ok := n.(*ast.IndexExpr)
		if !ok {
			return nil, nil, false
		}
		id, ok := unwrapIdent(ix.Index)
		if !ok || !p.sameVar(id, cand.Index.Obj) {
			return nil, nil, false
		}
		if !sameContainer(p, cand, ix.X) {
			// Subscripting a different container with the loop index is a
			// stray use; leave the identifier unconsumed.
			return nil, nil, false
		}
		return ix, id, true

	case KindPseudoArray:
		call, ok := n.(*ast.CallExpr)
		if !ok || len(call.Args) != 1 {
			return nil, nil, false
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return nil, nil, false
		}
		id, ok := unwrapIdent(call.Args[0])
		if !ok || !p.sameVar(id, cand.Index.Obj) {
			return nil, nil, false
		}
		if !sameContainer(p, cand, sel.X) {
			return nil, nil, false
		}
		if cand.Accessor == "" || sel.Sel.Name != cand.Accessor {
			// An accessor we could not resolve: consume the index but do
			// not offer an element rewrite for it.
			cand.UnknownAccess = true
			return nil, id, true
		}
		return call, id, true

	case KindIterator:
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return nil, nil, false
		}
		id, ok := unwrapIdent(sel.X)
		if !ok || !p.sameVar(id, cand.Index.Obj) {
			return nil, nil, false
		}
		selection, ok := p.Info.Selections[sel]
		if !ok || selection.Kind() != types.FieldVal {
			// Method calls on the cursor inside the body manipulate the
			// traversal; treated as a stray use.
			return nil, nil, false
		}
		if cand.Accessor == "" {
			cand.Accessor = sel.Sel.Name
		} else if cand.Accessor != sel.Sel.Name {
			return nil, nil, false
		}
		if cand.Cont.SeqElem == nil || !types.Identical(selection.Type(), cand.Cont.SeqElem) {
			return nil, nil, false
		}
		return sel, id, true
	}
	return nil, nil, false
}

// elementContext classifies the syntactic context of an element expression
// into an access kind, or rejects the loop when the context escapes the
// supported patterns (closure capture).
//
// Projections of the element are climbed first: a write to pts[i].X or
// xs[i][j] is a write to the element, and a pointer-receiver method call
// takes its address. Classifying at the projection root would score all
// of these as reads and let a copying rewrite drop the mutation.
func elementContext(p *Pass, parents map[ast.Node]ast.Node, expr ast.Expr) (AccessKind, RejectReason) {
	for n := parents[ast.Node(expr)]; n != nil; n = parents[n] {
		if _, ok := n.(*ast.FuncLit); ok {
			// Conservatively assume the closure outlives the iteration.
			return AccessRead, RejectUsageConflict
		}
	}

	n := ast.Node(expr)
	par := parents[n]
climb:
	for par != nil {
		switch pr := par.(type) {
		case *ast.ParenExpr:
		case *ast.SelectorExpr:
			if pr.X != n {
				break climb
			}
			if sel, ok := p.Info.Selections[pr]; ok && sel.Kind() == types.MethodVal {
				// A pointer receiver reaches the element through its
				// address; a value receiver only ever sees a copy.
				if recvIsPointer(sel) {
					return AccessAddrOf, RejectNone
				}
				return AccessRead, RejectNone
			}
		case *ast.IndexExpr:
			if pr.X != n {
				break climb
			}
		default:
			break climb
		}
		n = par
		par = parents[par]
	}

	switch pr := par.(type) {
	case *ast.UnaryExpr:
		if pr.Op == token.AND {
			return AccessAddrOf, RejectNone
		}
	case *ast.AssignStmt:
		for _, lhs := range pr.Lhs {
			if lhs == n {
				return AccessWrite, RejectNone
			}
		}
	case *ast.IncDecStmt:
		if pr.X == n {
			return AccessWrite, RejectNone
		}
	case *ast.CallExpr:
		if pr.Fun == n {
			// A method reached without selection info; assume the worst.
			return AccessAddrOf, RejectNone
		}
		for _, arg := range pr.Args {
			if arg == n {
				return AccessPassByValue, RejectNone
			}
		}
	}
	return AccessRead, RejectNone
}

func recvIsPointer(sel *types.Selection) bool {
	sig, ok := sel.Obj().Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return false
	}
	_, ok = sig.Recv().Type().Underlying().(*types.Pointer)
	return ok
}

// containerMutated reports whether the body rebinds the container's root
// object or takes its address. The counting header re-evaluates its bound
// every iteration while a range loop evaluates the container exactly
// once, so a container mutated mid-loop changes the iteration count.
// Element writes (c[i] = v) do not rebind the container and pass.
func containerMutated(p *Pass, cand *Candidate) bool {
	obj := rootObj(p, cand.Cont.Expr)
	if obj == nil {
		return false
	}
	mutated := false
	ast.Inspect(cand.Body, func(n ast.Node) bool {
		if mutated {
			return false
		}
		switch x := n.(type) {
		case *ast.AssignStmt:
			for _, lhs := range x.Lhs {
				if o := rootObj(p, lhs); o != nil && o == obj {
					mutated = true
					return false
				}
			}
		case *ast.UnaryExpr:
			if x.Op != token.AND {
				return true
			}
			if o := rootObj(p, x.X); o != nil && o == obj {
				mutated = true
				return false
			}
		}
		return true
	})
	return mutated
}

// sameContainer reports whether base denotes the candidate's container.
// Textually different spellings of the same object are tolerated but
// recorded as drift, which caps confidence at risky.
func sameContainer(p *Pass, cand *Candidate, base ast.Expr) bool {
	b := unwrapParen(base)
	if p.text(b) == cand.Cont.Text {
		return true
	}
	if o := rootObj(p, b); o != nil && o == rootObj(p, cand.Cont.Expr) {
		cand.Cont.TextDrift = true
		return true
	}
	return false
}

func rootObj(p *Pass, e ast.Expr) types.Object {
	switch x := unwrapParen(e).(type) {
	case *ast.Ident:
		return p.objOf(x)
	case *ast.SelectorExpr:
		return p.objOf(x.Sel)
	}
	return nil
}

// insideNestedLoop reports whether expr sits inside a for or range
// statement nested within the loop body.
func insideNestedLoop(parents map[ast.Node]ast.Node, expr ast.Expr) bool {
	for n := parents[ast.Node(expr)]; n != nil; n = parents[n] {
		switch n.(type) {
		case *ast.ForStmt, *ast.RangeStmt:
			return true
		}
	}
	return false
}

// parentMap builds a child-to-parent index for one statement subtree.
func parentMap(root ast.Node) map[ast.Node]ast.Node {
	parents := make(map[ast.Node]ast.Node)
	var stack []ast.Node
	ast.Inspect(root, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return true
		}
		if len(stack) > 0 {
			parents[n] = stack[len(stack)-1]
		}
		stack = append(stack, n)
		return true
	})
	return parents
}
