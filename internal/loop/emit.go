package loop

import (
	"fmt"
	"go/token"
	"sort"
	"sync"
)

// Tracking records the edit ranges accepted in one pass over a file, plus
// the element names handed out to sibling rewrites. It is the only
// mutable state the pipeline shares between loops: analyses run
// concurrently, emission serializes on this lock. One Tracking value
// lives exactly as long as one pass and must not be reused across passes.
type Tracking struct {
	mu     sync.Mutex
	ranges [][2]token.Pos
	names  map[string]bool
}

// NewTracking returns an empty tracking context for one pass.
func NewTracking() *Tracking {
	return &Tracking{names: make(map[string]bool)}
}

// Reserve registers the half-open range [start, end) unless it overlaps
// an already accepted edit, in which case nothing is registered.
func (t *Tracking) Reserve(start, end token.Pos) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.ranges {
		if start < r[1] && r[0] < end {
			return false
		}
	}
	t.ranges = append(t.ranges, [2]token.Pos{start, end})
	return true
}

func (t *Tracking) nameUsed(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.names[name]
}

func (t *Tracking) takeName(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.names[name] = true
}

// Emit finishes one analyzed loop: it reserves the replacement range in
// the tracking context, synthesizes the element name, and renders the
// replacement text. Emission must be serialized per file; concurrent
// callers synchronize through the Tracking value.
//
// The replacement covers the whole loop statement. Substituted element
// accesses and the removed alias statement all fall inside that range, so
// one accepted edit per loop keeps the non-overlap invariant trivial to
// check.
func Emit(p *Pass, a *Analysis, tr *Tracking) Result {
	res := Result{Confidence: a.conf, Reason: a.reason}
	if a.cand != nil {
		res.Kind = a.cand.Kind
		res.Mode = a.desc.Mode
		res.Container = a.cand.Cont.Text
		res.Start = a.cand.Loop.Pos()
		res.End = a.cand.Loop.End()
	}
	if a.reason != RejectNone {
		return res
	}

	if !tr.Reserve(a.cand.Loop.Pos(), a.cand.Loop.End()) {
		res.Reason = RejectEditConflict
		return res
	}

	if a.desc.Mode == ModeValue && (a.alias != nil || len(liveUsages(a)) > 0) {
		res.ElemName = synthesizeName(p, a.cand, a.alias, tr)
	}
	res.Suggestion = render(p, a, res.ElemName)
	return res
}

// liveUsages are the element accesses that survive into the rewritten
// body, excluding those consumed by a removed alias statement.
func liveUsages(a *Analysis) []Usage {
	live := a.usages[:0:0]
	for _, u := range a.usages {
		if !u.InAlias {
			live = append(live, u)
		}
	}
	return live
}

type splice struct {
	start, end int
	repl       string
}

// render builds the replacement text for the whole loop: a new header,
// element accesses substituted by the new variable in the element form,
// and the alias statement removed.
func render(p *Pass, a *Analysis, name string) string {
	cand := a.cand
	base := p.Fset.Position(cand.Loop.Pos()).Offset
	text := p.text(cand.Loop)
	off := func(pos token.Pos) int { return p.Fset.Position(pos).Offset - base }

	edits := []splice{{0, off(cand.Body.Lbrace), renderHeader(a, name)}}

	if a.desc.Mode == ModeValue {
		if a.alias != nil {
			start, end := lineRange(text, off(a.alias.Stmt.Pos()), off(a.alias.Stmt.End()))
			edits = append(edits, splice{start, end, ""})
		}
		for _, u := range liveUsages(a) {
			edits = append(edits, splice{off(u.Expr.Pos()), off(u.Expr.End()), name})
		}
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start > edits[j].start })
	out := []byte(text)
	for _, e := range edits {
		out = append(out[:e.start], append([]byte(e.repl), out[e.end:]...)...)
	}
	return string(out)
}

// renderHeader writes the new loop header, up to but not including the
// opening brace.
func renderHeader(a *Analysis, name string) string {
	cand, desc := a.cand, a.desc
	cont := desc.ContainerText

	if desc.Mode == ModeValue {
		switch {
		case cand.Kind == KindIterator:
			if name == "" {
				return fmt.Sprintf("for range %s.All() ", cont)
			}
			return fmt.Sprintf("for %s := range %s.All() ", name, cont)
		case cand.Kind == KindPseudoArray:
			if name == "" {
				// Counting the Len() bound is enough for a dead index.
				return fmt.Sprintf("for range %s.%s() ", cont, cand.BoundCall)
			}
			return fmt.Sprintf("for %s := range %s.All() ", name, cont)
		case name == "" && cand.Cont.Caps.Has(CapString):
			return fmt.Sprintf("for range len(%s) ", cont)
		case name == "":
			return fmt.Sprintf("for range %s ", cont)
		default:
			return fmt.Sprintf("for _, %s := range %s ", name, cont)
		}
	}

	idx := cand.Index.Ident.Name
	switch {
	case cand.Kind == KindPseudoArray:
		return fmt.Sprintf("for %s := range %s.%s() ", idx, cont, cand.BoundCall)
	case cand.Cont.Caps.Has(CapString):
		// Range over the length, not the string: a string range decodes
		// runes and would skip byte positions.
		return fmt.Sprintf("for %s := range len(%s) ", idx, cont)
	default:
		return fmt.Sprintf("for %s := range %s ", idx, cont)
	}
}

// lineRange widens [start, end) to cover the statement's whole line,
// including the trailing newline, so deleting it leaves no blank gap.
func lineRange(text string, start, end int) (int, int) {
	for start > 0 && text[start-1] != '\n' {
		start--
	}
	for end < len(text) && text[end] != '\n' {
		end++
	}
	if end < len(text) {
		end++
	}
	return start, end
}
