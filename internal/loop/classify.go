package loop

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
)

// accessorNames are the method names accepted as element accessors on
// pseudo-array containers, in lookup order.
var accessorNames = []string{"At", "Index", "Get"}

// classify categorizes a candidate statement into one of the three fixer
// kinds or rejects it. It checks the loop header shape (unit step, zero
// start, supported bound), resolves the container expression, and verifies
// the index variable is never reassigned inside the body.
func classify(p *Pass, stmt ast.Stmt) (*Candidate, bool) {
	switch s := stmt.(type) {
	case *ast.ForStmt:
		return classifyFor(p, s)
	case *ast.RangeStmt:
		return classifyRange(p, s)
	}
	return nil, false
}

func classifyFor(p *Pass, loop *ast.ForStmt) (*Candidate, bool) {
	if loop.Init == nil || loop.Cond == nil || loop.Body == nil {
		return nil, false
	}
	init, ok := loop.Init.(*ast.AssignStmt)
	if !ok || init.Tok != token.DEFINE || len(init.Lhs) != 1 || len(init.Rhs) != 1 {
		return nil, false
	}
	idx, ok := init.Lhs[0].(*ast.Ident)
	if !ok || idx.Name == "_" {
		return nil, false
	}
	obj := p.Info.Defs[idx]
	if obj == nil {
		// Missing type information degrades to a classification failure.
		return nil, false
	}

	if cand, ok := classifyCursor(p, loop, init, idx, obj); ok {
		return cand, true
	}
	return classifyCounting(p, loop, init, idx, obj)
}

// classifyCursor matches the Front/Next cursor idiom:
//
//	for it := c.Front(); it != nil; it = it.Next() { ... }
//
// The container must expose a range-able All() view, otherwise there is
// no element loop to rewrite to.
func classifyCursor(p *Pass, loop *ast.ForStmt, init *ast.AssignStmt, idx *ast.Ident, obj types.Object) (*Candidate, bool) {
	call, ok := unwrapCall(init.Rhs[0])
	if !ok || len(call.Args) != 0 {
		return nil, false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "Front" {
		return nil, false
	}

	cond, ok := loop.Cond.(*ast.BinaryExpr)
	if !ok || cond.Op != token.NEQ {
		return nil, false
	}
	condIdent, ok := unwrapIdent(cond.X)
	if !ok || !p.sameVar(condIdent, obj) || !isNilIdent(p, cond.Y) {
		return nil, false
	}

	post, ok := loop.Post.(*ast.AssignStmt)
	if !ok || post.Tok != token.ASSIGN || len(post.Lhs) != 1 || len(post.Rhs) != 1 {
		return nil, false
	}
	postIdent, ok := unwrapIdent(post.Lhs[0])
	if !ok || !p.sameVar(postIdent, obj) {
		return nil, false
	}
	next, ok := unwrapCall(post.Rhs[0])
	if !ok || len(next.Args) != 0 {
		return nil, false
	}
	nextSel, ok := next.Fun.(*ast.SelectorExpr)
	if !ok || nextSel.Sel.Name != "Next" {
		return nil, false
	}
	nextRecv, ok := unwrapIdent(nextSel.X)
	if !ok || !p.sameVar(nextRecv, obj) {
		return nil, false
	}

	cont, ok := makeContainer(p, sel.X)
	if !ok || !cont.Caps.Has(CapRangeFunc) {
		return nil, false
	}

	cand := &Candidate{
		Loop:  loop,
		Body:  loop.Body,
		Kind:  KindIterator,
		Index: IndexVar{Ident: idx, Obj: obj},
		Cont:  cont,
	}
	if indexReassigned(p, loop.Body, obj) {
		return nil, false
	}
	return cand, true
}

// classifyCounting matches the canonical counting header i := 0, i < bound,
// i++ and decides between the array-index and pseudo-array kinds from the
// bound expression.
func classifyCounting(p *Pass, loop *ast.ForStmt, init *ast.AssignStmt, idx *ast.Ident, obj types.Object) (*Candidate, bool) {
	if !isZeroLiteral(init.Rhs[0]) {
		return nil, false
	}
	post, ok := loop.Post.(*ast.IncDecStmt)
	if !ok || post.Tok != token.INC {
		return nil, false
	}
	postIdent, ok := unwrapIdent(post.X)
	if !ok || !p.sameVar(postIdent, obj) {
		return nil, false
	}
	cond, ok := loop.Cond.(*ast.BinaryExpr)
	if !ok || cond.Op != token.LSS {
		return nil, false
	}
	condIdent, ok := unwrapIdent(cond.X)
	if !ok || !p.sameVar(condIdent, obj) {
		return nil, false
	}

	cand := &Candidate{
		Loop:  loop,
		Body:  loop.Body,
		Index: IndexVar{Ident: idx, Obj: obj},
	}

	bound := unwrapParen(cond.Y)
	switch b := bound.(type) {
	case *ast.CallExpr:
		if isBuiltinLen(p, b) {
			cont, ok := makeContainer(p, b.Args[0])
			if !ok || !cont.Caps.Has(CapSubscript) {
				return nil, false
			}
			cand.Kind = KindArrayIndex
			cand.Cont = cont
		} else if sel, ok := b.Fun.(*ast.SelectorExpr); ok && sel.Sel.Name == "Len" && len(b.Args) == 0 {
			cont, ok := makeContainer(p, sel.X)
			if !ok {
				return nil, false
			}
			cand.Kind = KindPseudoArray
			cand.Cont = cont
			cand.BoundCall = "Len"
			resolveAccessor(p, cand)
		} else {
			return nil, false
		}
	default:
		// A fixed bound is acceptable only when it provably equals the
		// extent of the one array the body subscripts.
		cont, ok := matchFixedBound(p, loop, bound, obj)
		if !ok {
			return nil, false
		}
		cand.Kind = KindArrayIndex
		cand.Cont = cont
	}

	if indexReassigned(p, loop.Body, obj) {
		return nil, false
	}
	return cand, true
}

// classifyRange matches index-only range loops whose body still subscripts:
//
//	for i := range c { ... c[i] ... }
//
// These take the array-index path; only the element form is a change.
func classifyRange(p *Pass, loop *ast.RangeStmt) (*Candidate, bool) {
	if loop.Tok != token.DEFINE || loop.Value != nil || loop.Body == nil {
		return nil, false
	}
	idx, ok := loop.Key.(*ast.Ident)
	if !ok || idx.Name == "_" {
		return nil, false
	}
	obj := p.Info.Defs[idx]
	if obj == nil {
		return nil, false
	}
	cont, ok := makeContainer(p, loop.X)
	if !ok || !cont.Caps.Has(CapSubscript) {
		return nil, false
	}
	cand := &Candidate{
		Loop:  loop,
		Body:  loop.Body,
		Kind:  KindArrayIndex,
		Index: IndexVar{Ident: idx, Obj: obj},
		Cont:  cont,
	}
	if indexReassigned(p, loop.Body, obj) {
		return nil, false
	}
	return cand, true
}

// matchFixedBound handles loops bounded by a constant n where the body
// subscripts exactly one fixed-size array of length n.
func matchFixedBound(p *Pass, loop *ast.ForStmt, bound ast.Expr, obj types.Object) (Container, bool) {
	tv, ok := p.Info.Types[bound]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.Int {
		return Container{}, false
	}
	n, ok := constant.Int64Val(tv.Value)
	if !ok {
		return Container{}, false
	}

	// Find the single container subscripted by the index in the body.
	var contExpr ast.Expr
	unique := true
	ast.Inspect(loop.Body, func(node ast.Node) bool {
		ix, ok := node.(*ast.IndexExpr)
		if !ok {
			return true
		}
		id, ok := unwrapIdent(ix.Index)
		if !ok || !p.sameVar(id, obj) {
			return true
		}
		if contExpr == nil {
			contExpr = ix.X
		} else if p.text(unwrapParen(ix.X)) != p.text(unwrapParen(contExpr)) {
			unique = false
		}
		return true
	})
	if contExpr == nil || !unique {
		return Container{}, false
	}

	cont, ok := makeContainer(p, contExpr)
	if !ok || !cont.Caps.Has(CapArray) {
		return Container{}, false
	}
	length, ok := arrayLen(p, cont)
	if !ok || length != n {
		return Container{}, false
	}
	return cont, true
}

// makeContainer derives the container descriptor (text, element type,
// capability flags) for an expression. Fails when type information is
// unavailable.
func makeContainer(p *Pass, expr ast.Expr) (Container, bool) {
	expr = unwrapParen(expr)
	tv, ok := p.Info.Types[expr]
	if !ok || tv.Type == nil {
		return Container{}, false
	}
	c := Container{Expr: expr, Text: p.text(expr)}

	switch u := tv.Type.Underlying().(type) {
	case *types.Slice:
		c.Caps |= CapSubscript
		c.Elem = u.Elem()
	case *types.Array:
		c.Caps |= CapSubscript | CapArray
		c.Elem = u.Elem()
	case *types.Basic:
		if u.Kind() == types.String || u.Kind() == types.UntypedString {
			c.Caps |= CapSubscript | CapString
			c.Elem = types.Typ[types.Byte]
		}
	case *types.Pointer:
		if arr, ok := u.Elem().Underlying().(*types.Array); ok {
			c.Caps |= CapSubscript | CapArray | CapPointerLike
			c.Elem = arr.Elem()
		}
	}

	if elem, ok := rangeFuncElem(p.Pkg, tv.Type); ok {
		c.Caps |= CapRangeFunc
		c.SeqElem = elem
		if c.Elem == nil {
			c.Elem = elem
		}
	}
	return c, true
}

// rangeFuncElem reports whether t has an All() method returning a
// range-able single-value sequence (func(yield func(E) bool)), and if so
// the element type E.
func rangeFuncElem(pkg *types.Package, t types.Type) (types.Type, bool) {
	obj, _, _ := types.LookupFieldOrMethod(t, true, pkg, "All")
	fn, ok := obj.(*types.Func)
	if !ok {
		return nil, false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return nil, false
	}
	seq, ok := sig.Results().At(0).Type().Underlying().(*types.Signature)
	if !ok || seq.Params().Len() != 1 || seq.Results().Len() != 0 {
		return nil, false
	}
	yield, ok := seq.Params().At(0).Type().Underlying().(*types.Signature)
	if !ok || yield.Params().Len() != 1 || yield.Results().Len() != 1 {
		return nil, false
	}
	ret, ok := yield.Results().At(0).Type().Underlying().(*types.Basic)
	if !ok || ret.Kind() != types.Bool {
		return nil, false
	}
	return yield.Params().At(0).Type(), true
}

// resolveAccessor looks up the element accessor method on a pseudo-array
// container and records its name and element type. Leaves the candidate
// unchanged when none of the known accessor shapes exists.
func resolveAccessor(p *Pass, cand *Candidate) {
	tv, ok := p.Info.Types[cand.Cont.Expr]
	if !ok || tv.Type == nil {
		return
	}
	for _, name := range accessorNames {
		obj, _, _ := types.LookupFieldOrMethod(tv.Type, true, p.Pkg, name)
		fn, ok := obj.(*types.Func)
		if !ok {
			continue
		}
		sig, ok := fn.Type().(*types.Signature)
		if !ok || sig.Params().Len() != 1 || sig.Results().Len() != 1 {
			continue
		}
		if b, ok := sig.Params().At(0).Type().Underlying().(*types.Basic); !ok || b.Info()&types.IsInteger == 0 {
			continue
		}
		cand.Accessor = name
		cand.Cont.Elem = sig.Results().At(0).Type()
		return
	}
}

// indexReassigned reports whether the body assigns to, increments, or
// shadows the index variable. Shadowing is treated conservatively as a
// reassignment.
func indexReassigned(p *Pass, body *ast.BlockStmt, obj types.Object) bool {
	reassigned := false
	ast.Inspect(body, func(n ast.Node) bool {
		if reassigned {
			return false
		}
		switch stmt := n.(type) {
		case *ast.AssignStmt:
			for _, lhs := range stmt.Lhs {
				id, ok := lhs.(*ast.Ident)
				if !ok {
					continue
				}
				if p.sameVar(id, obj) || (stmt.Tok == token.DEFINE && id.Name == obj.Name()) {
					reassigned = true
					return false
				}
			}
		case *ast.IncDecStmt:
			if id, ok := stmt.X.(*ast.Ident); ok && p.sameVar(id, obj) {
				reassigned = true
				return false
			}
		case *ast.DeclStmt:
			gen, ok := stmt.Decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.VAR {
				return true
			}
			for _, spec := range gen.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for _, name := range vs.Names {
					if name != nil && name.Name == obj.Name() {
						reassigned = true
						return false
					}
				}
			}
		}
		return true
	})
	return reassigned
}

func arrayLen(p *Pass, c Container) (int64, bool) {
	tv, ok := p.Info.Types[c.Expr]
	if !ok || tv.Type == nil {
		return 0, false
	}
	switch u := tv.Type.Underlying().(type) {
	case *types.Array:
		return u.Len(), true
	case *types.Pointer:
		if arr, ok := u.Elem().Underlying().(*types.Array); ok {
			return arr.Len(), true
		}
	}
	return 0, false
}

func isBuiltinLen(p *Pass, call *ast.CallExpr) bool {
	if len(call.Args) != 1 || call.Ellipsis.IsValid() {
		return false
	}
	id, ok := call.Fun.(*ast.Ident)
	if !ok || id.Name != "len" {
		return false
	}
	if obj, ok := p.Info.Uses[id]; ok {
		_, builtin := obj.(*types.Builtin)
		return builtin
	}
	return id.Obj == nil
}

func isNilIdent(p *Pass, expr ast.Expr) bool {
	id, ok := unwrapIdent(expr)
	if !ok || id.Name != "nil" {
		return false
	}
	if obj, ok := p.Info.Uses[id]; ok {
		_, isNil := obj.(*types.Nil)
		return isNil
	}
	return id.Obj == nil
}

// isZeroLiteral accepts 0 in any integer literal spelling.
func isZeroLiteral(expr ast.Expr) bool {
	lit, ok := unwrapParen(expr).(*ast.BasicLit)
	if !ok || lit.Kind != token.INT {
		return false
	}
	if lit.Value == "0" {
		return true
	}
	val := constant.MakeFromLiteral(lit.Value, token.INT, 0)
	if val.Kind() == constant.Unknown {
		return false
	}
	return constant.Sign(val) == 0
}

func unwrapParen(expr ast.Expr) ast.Expr {
	for {
		paren, ok := expr.(*ast.ParenExpr)
		if !ok {
			return expr
		}
		expr = paren.X
	}
}

func unwrapIdent(expr ast.Expr) (*ast.Ident, bool) {
	id, ok := unwrapParen(expr).(*ast.Ident)
	return id, ok
}

func unwrapCall(expr ast.Expr) (*ast.CallExpr, bool) {
	call, ok := unwrapParen(expr).(*ast.CallExpr)
	return call, ok
}
