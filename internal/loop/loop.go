// Package loop implements the loop-modernization pipeline: given a
// counting- or cursor-style loop over a sequence, it decides whether the
// loop can be rewritten as a range loop without changing observable
// behavior, and if so, synthesizes the replacement text.
//
// The pipeline runs strictly left to right:
//
//	classify -> collect usages -> detect alias -> evaluate confidence
//	         -> build descriptor -> synthesize name -> emit edit
//
// Every stage may terminate the pipeline early with a reject reason; a
// rejected loop is left untouched. Analysis stages are read-only over the
// typed tree and safe to run concurrently across loops. Emission is
// serialized through a Tracking value, the only shared mutable state.
package loop

import (
	"go/ast"
	"go/token"
	"go/types"

	tt "github.com/modernlint/loopconv/internal/types"
)

// Kind is the closed set of convertible loop shapes.
type Kind int

const (
	KindNone Kind = iota

	// KindArrayIndex is an integral counter subscripting one container:
	// for i := 0; i < len(c); i++ { ... c[i] ... }
	// Index-only range loops (for i := range c with c[i] uses) take the
	// same path since the same element rewrite applies.
	KindArrayIndex

	// KindIterator is a cursor walked with a Front/Next style API and
	// dereferenced through a field:
	// for it := c.Front(); it != nil; it = it.Next() { ... it.Value ... }
	KindIterator

	// KindPseudoArray is a counter over an accessor-style container:
	// for i := 0; i < c.Len(); i++ { ... c.At(i) ... }
	KindPseudoArray
)

func (k Kind) String() string {
	switch k {
	case KindArrayIndex:
		return "array-index"
	case KindIterator:
		return "iterator"
	case KindPseudoArray:
		return "pseudo-array"
	default:
		return "none"
	}
}

// RejectReason says why a candidate left the pipeline without an edit.
// All rejections are local: no rejection of one loop affects another.
type RejectReason int

const (
	RejectNone RejectReason = iota

	// RejectClassification: the loop shape is unsupported, the bound and
	// body reference different containers, or type information is missing.
	RejectClassification

	// RejectUsageConflict: the index or cursor is used outside the
	// supported access patterns (bare index value, index arithmetic,
	// address of the index, closure capture, nested loop use).
	RejectUsageConflict

	// RejectConfidence: a valid rewrite exists but its confidence is
	// below the configured minimum.
	RejectConfidence

	// RejectEditConflict: the replacement range overlaps an edit already
	// accepted in this pass. Always surfaced to the caller.
	RejectEditConflict
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectClassification:
		return "classification-failure"
	case RejectUsageConflict:
		return "usage-conflict"
	case RejectConfidence:
		return "confidence-below-threshold"
	case RejectEditConflict:
		return "edit-range-conflict"
	default:
		return "unknown"
	}
}

// Caps records what the container expression supports.
type Caps uint8

const (
	// CapSubscript: c[i] is valid (slice, array, string, pointer to array).
	CapSubscript Caps = 1 << iota
	// CapRangeFunc: the container type has an All() iterator method whose
	// result is range-able (func(yield func(E) bool)).
	CapRangeFunc
	// CapPointerLike: the container expression is a pointer to an array.
	CapPointerLike
	// CapArray: the underlying container type is a fixed-size array.
	CapArray
	// CapString: the container is a string. Counting loops visit bytes
	// but a two-variable range visits runes, so strings never take the
	// element form.
	CapString
)

// Has reports whether all flags in f are set.
func (c Caps) Has(f Caps) bool { return c&f == f }

// Container is the sequence expression a loop traverses. It is derived
// once per loop and must stay syntactically stable across all uses inside
// the body; otherwise the loop is rejected.
type Container struct {
	Expr ast.Expr
	Text string // canonical source text
	Elem types.Type
	Caps Caps

	// SeqElem is the element type yielded by the container's All()
	// method when CapRangeFunc is set.
	SeqElem types.Type

	// TextDrift is set when an occurrence resolves to the same object as
	// Expr but renders differently (for example extra parentheses).
	// Drift caps the confidence at risky.
	TextDrift bool
}

// IndexVar is the loop-controlled variable: the integral counter for
// array-index and pseudo-array loops, the cursor for iterator loops.
type IndexVar struct {
	Ident *ast.Ident
	Obj   types.Object
}

// Candidate is one loop moving through the pipeline. The underlying
// syntax tree is never mutated, only read.
type Candidate struct {
	Loop ast.Stmt // *ast.ForStmt or *ast.RangeStmt
	Body *ast.BlockStmt
	Kind Kind

	Index IndexVar
	Cont  Container

	// Accessor names how elements are obtained: the At/Index/Get method
	// for pseudo-array loops, the dereferenced field for iterator loops.
	// Empty when the body never touches elements.
	Accessor string

	// BoundCall is the Len-style bound method name for pseudo-array
	// loops, used when the rewrite keeps the index.
	BoundCall string

	// UnknownAccess is set when the body reaches elements through an
	// accessor the type information could not resolve. Such loops keep
	// their body untouched and score risky.
	UnknownAccess bool
}

// AccessKind classifies one use of the element (or of the index through
// which the element is reached).
type AccessKind int

const (
	AccessRead AccessKind = iota
	AccessWrite
	AccessAddrOf      // &c[i]: the element's identity is observed
	AccessPassByValue // the element is a call argument
)

func (k AccessKind) String() string {
	switch k {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessAddrOf:
		return "address-of"
	case AccessPassByValue:
		return "pass-by-value"
	default:
		return "unknown"
	}
}

// Usage is one occurrence of an element expression built from the index
// or cursor inside the loop body. Usages are recorded in source order.
type Usage struct {
	Expr    ast.Expr // c[i], it.Value, or c.At(i)
	Kind    AccessKind
	StmtIdx int  // index of the enclosing top-level body statement
	InAlias bool // occurrence is the initializer of the alias statement
	Nested  bool // occurrence sits inside a loop nested in the body
}

// Alias is a body-local binding that already names the element, found as
// the first statement of the body. A nil *Alias means no alias exists and
// a name is synthesized instead.
type Alias struct {
	Name string
	Stmt *ast.AssignStmt
}

// Mode is how the rewritten loop passes each element.
type Mode int

const (
	// ModeValue copies the element into a new loop variable:
	// for _, x := range c.
	ModeValue Mode = iota
	// ModeConstRef keeps the index and reads elements in place, avoiding
	// copies of large elements: for i := range c with c[i] untouched.
	ModeConstRef
	// ModeMutRef keeps the index because the body writes through it or
	// needs the element's address: for i := range c with c[i] untouched.
	ModeMutRef
)

func (m Mode) String() string {
	switch m {
	case ModeValue:
		return "by-value"
	case ModeConstRef:
		return "by-const-reference"
	case ModeMutRef:
		return "by-mutable-reference"
	default:
		return "unknown"
	}
}

// Descriptor is the computed shape of the rewrite.
type Descriptor struct {
	ContainerText    string
	NeedsDereference bool // iterator loops: it.Value occurrences become the new variable
	Mode             Mode
	Elem             types.Type
}

// NamingStyle selects how synthesized element names are rendered.
type NamingStyle int

const (
	CamelBack NamingStyle = iota
	UpperCamelCase
	LowerCase
)

// ParseNamingStyle parses a style name as used in configuration.
func ParseNamingStyle(s string) (NamingStyle, error) {
	switch s {
	case "camelBack":
		return CamelBack, nil
	case "upperCamel":
		return UpperCamelCase, nil
	case "lower":
		return LowerCase, nil
	default:
		return 0, &UnknownStyleError{Style: s}
	}
}

// UnknownStyleError reports an unrecognized naming style name.
type UnknownStyleError struct{ Style string }

func (e *UnknownStyleError) Error() string {
	return "unknown naming style \"" + e.Style + "\" (want camelBack, upperCamel, or lower)"
}

// Config is the conversion policy surface exposed to the driver.
type Config struct {
	// MaxCopySize is the largest element size, in bytes, still passed by
	// value when the body only reads elements.
	MaxCopySize int64
	// MinConfidence gates which rewrites are emitted.
	MinConfidence tt.Confidence
	// NamingStyle shapes synthesized element names.
	NamingStyle NamingStyle
}

// DefaultConfig returns the policy used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		MaxCopySize:   16,
		MinConfidence: tt.ConfidenceReasonable,
		NamingStyle:   CamelBack,
	}
}

// Pass holds the per-file inputs of one conversion pass. All fields are
// read-only during analysis; a pass operates on a fixed tree snapshot and
// accepted edits must be flushed to text before the next pass re-parses.
type Pass struct {
	Fset  *token.FileSet
	File  *ast.File
	Info  *types.Info
	Pkg   *types.Package
	Src   []byte
	Sizes types.Sizes
	Cfg   Config
}

// text returns the original source text of a node.
func (p *Pass) text(n ast.Node) string {
	start := p.Fset.Position(n.Pos()).Offset
	end := p.Fset.Position(n.End()).Offset
	if start < 0 || end > len(p.Src) || start > end {
		return ""
	}
	return string(p.Src[start:end])
}

// objOf resolves an identifier to its object, covering both defining and
// using occurrences.
func (p *Pass) objOf(id *ast.Ident) types.Object {
	if o := p.Info.Defs[id]; o != nil {
		return o
	}
	return p.Info.Uses[id]
}

// sameVar reports whether id denotes obj. Identity, not name equality:
// shadowed variables compare unequal.
func (p *Pass) sameVar(id *ast.Ident, obj types.Object) bool {
	if id == nil || obj == nil {
		return false
	}
	o := p.objOf(id)
	return o != nil && o == obj
}

// Analysis carries one loop between the concurrent read-only stages and
// the serialized emission stage.
type Analysis struct {
	cand   *Candidate
	usages []Usage
	alias  *Alias
	conf   tt.Confidence
	desc   Descriptor
	reason RejectReason
}

// Rejected reports whether the read-only stages already excluded the loop.
func (a *Analysis) Rejected() bool { return a.reason != RejectNone }

// Analyze runs the read-only pipeline stages for one loop: classification,
// usage collection, alias detection, confidence evaluation, and descriptor
// building. It touches no shared state and may run concurrently with
// analyses of other loops.
func Analyze(p *Pass, stmt ast.Stmt) *Analysis {
	a := &Analysis{}

	cand, ok := classify(p, stmt)
	if !ok {
		a.reason = RejectClassification
		return a
	}
	a.cand = cand

	usages, reason := collectUsages(p, cand)
	if reason != RejectNone {
		a.reason = reason
		return a
	}
	a.usages = usages

	a.alias = detectAlias(p, cand, usages)
	a.conf = evaluate(p, cand, usages)
	if a.conf < p.Cfg.MinConfidence {
		a.reason = RejectConfidence
		return a
	}

	a.desc = buildDescriptor(p, cand, usages, a.alias)

	// Writes and element identity cannot survive a rewrite that yields
	// values from an iterator sequence.
	if cand.Kind == KindIterator && a.desc.Mode != ModeValue {
		a.reason = RejectUsageConflict
		return a
	}

	// An index-only range loop is already in its index form; only the
	// element form is an improvement.
	if _, isRange := cand.Loop.(*ast.RangeStmt); isRange && a.desc.Mode != ModeValue {
		a.reason = RejectClassification
		return a
	}

	return a
}

// Result is the terminal state of one loop: either Rejected (no text
// change) or Emitted (one replacement recorded against the tracking
// context).
type Result struct {
	Kind       Kind
	Mode       Mode
	Reason     RejectReason
	Confidence tt.Confidence
	Container  string
	ElemName   string
	Suggestion string
	Start, End token.Pos
}

// Emitted reports whether a replacement was produced.
func (r Result) Emitted() bool { return r.Reason == RejectNone }
