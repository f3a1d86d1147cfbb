package loop

import (
	"go/types"
)

// buildDescriptor decides the rewrite's shape: the element passing mode,
// whether cursor dereferences collapse into the new variable, and the
// container text to range over.
//
// The mode rules: any write or address-of through the index demands the
// mutable form; otherwise small trivially-copyable elements are passed by
// value and everything else stays behind the index to avoid copies. An
// alias declaration overrides the computed mode only towards the more
// restrictive copy: the body already made that copy itself, so honoring
// the alias never widens access.
func buildDescriptor(p *Pass, cand *Candidate, usages []Usage, alias *Alias) Descriptor {
	d := Descriptor{
		ContainerText:    cand.Cont.Text,
		Elem:             cand.Cont.Elem,
		NeedsDereference: cand.Kind == KindIterator,
	}

	var wrote, tookAddr bool
	for _, u := range usages {
		switch u.Kind {
		case AccessWrite:
			wrote = true
		case AccessAddrOf:
			tookAddr = true
		}
	}

	switch {
	case wrote:
		d.Mode = ModeMutRef
	case tookAddr:
		// The element's identity is needed; keep the subscript lvalue.
		d.Mode = ModeMutRef
	case len(usages) == 0 && alias == nil && !cand.UnknownAccess:
		// The body never touches elements; a bare range keeps the
		// iteration count and drops the dead index.
		d.Mode = ModeValue
	case alias != nil:
		d.Mode = ModeValue
	case copiable(p, cand.Cont.Elem):
		d.Mode = ModeValue
	default:
		d.Mode = ModeConstRef
	}

	elemBound := len(usages) > 0 || alias != nil
	// Element rewrites need a resolvable element view.
	if cand.UnknownAccess && d.Mode == ModeValue {
		d.Mode = ModeConstRef
	}
	// A two-variable range over a string decodes runes; only the index
	// form preserves byte order.
	if elemBound && cand.Cont.Caps.Has(CapString) && d.Mode == ModeValue {
		d.Mode = ModeConstRef
	}
	if elemBound && cand.Kind == KindPseudoArray && d.Mode == ModeValue {
		if !cand.Cont.Caps.Has(CapRangeFunc) || !accessorMatchesSeq(cand) {
			d.Mode = ModeConstRef
		}
	}
	return d
}

// copiable reports whether an element of type t is cheap enough to pass by
// value. Everything in Go copies; the size threshold is the binding
// constraint.
func copiable(p *Pass, t types.Type) bool {
	if t == nil {
		return false
	}
	switch t.Underlying().(type) {
	case *types.Interface, *types.Signature:
		return false
	}
	return p.Sizes.Sizeof(t) <= p.Cfg.MaxCopySize
}

// accessorMatchesSeq reports whether the pseudo-array accessor yields the
// same element type as the container's All() sequence, so substituting the
// sequence variable for accessor calls preserves types.
func accessorMatchesSeq(cand *Candidate) bool {
	if cand.Accessor == "" {
		// No element accesses at all; the element form has nothing to
		// substitute and the sequence view is still faithful.
		return true
	}
	return cand.Cont.SeqElem != nil && cand.Cont.Elem != nil &&
		types.Identical(cand.Cont.SeqElem, cand.Cont.Elem)
}
