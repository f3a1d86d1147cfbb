package internal

import (
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/modernlint/loopconv/internal/ignore"
	"github.com/modernlint/loopconv/internal/loop"
	tt "github.com/modernlint/loopconv/internal/types"
)

// Rule names attached to emitted issues.
const (
	RuleLoopConvert  = "loop-convert"
	RuleEditConflict = "loop-convert-conflict"
)

// Engine runs the loop conversion pipeline over files. One Engine may be
// shared by concurrent callers; per-file state (tracking context, ignore
// scopes) is created fresh for every run.
type Engine struct {
	cfg loop.Config

	// Verbose additionally reports loops whose rewrite was valid but
	// rejected by the confidence threshold.
	Verbose bool
}

// NewEngine creates an engine with the given conversion policy.
func NewEngine(cfg loop.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's conversion policy.
func (e *Engine) Config() loop.Config { return e.cfg }

// Run applies the pipeline to the given file and returns its issues.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return e.runSource(filename, src)
}

// RunSource applies the pipeline to in-memory source.
func (e *Engine) RunSource(src []byte) ([]tt.Issue, error) {
	return e.runSource("", src)
}

func (e *Engine) runSource(filename string, src []byte) ([]tt.Issue, error) {
	displayName := filename
	if displayName == "" {
		displayName = "source.go"
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, displayName, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}

	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
		Scopes:     make(map[ast.Node]*types.Scope),
	}
	conf := types.Config{
		Importer: importer.Default(),
		Error:    func(error) {}, // best-effort: partial info still classifies
	}
	pkg, _ := conf.Check(file.Name.Name, fset, []*ast.File{file}, info)

	sizes := types.SizesFor("gc", runtime.GOARCH)
	if sizes == nil {
		sizes = &types.StdSizes{WordSize: 8, MaxAlign: 8}
	}

	pass := &loop.Pass{
		Fset:  fset,
		File:  file,
		Info:  info,
		Pkg:   pkg,
		Src:   src,
		Sizes: sizes,
		Cfg:   e.cfg,
	}

	candidates := collectLoops(file)

	// Analysis is read-only over the typed tree and runs concurrently
	// across loops. Emission below is serialized in source order so that
	// synthesized names and edit ranges are deterministic.
	analyses := make([]*loop.Analysis, len(candidates))
	var wg sync.WaitGroup
	for i, stmt := range candidates {
		wg.Add(1)
		go func(i int, stmt ast.Stmt) {
			defer wg.Done()
			analyses[i] = loop.Analyze(pass, stmt)
		}(i, stmt)
	}
	wg.Wait()

	tracking := loop.NewTracking()
	ignores := ignore.ParseComments(file, fset)

	var issues []tt.Issue
	for i, a := range analyses {
		res := loop.Emit(pass, a, tracking)
		issue, ok := e.issueFor(fset, candidates[i], res)
		if !ok {
			continue
		}
		issue.Filename = displayName
		if ignores.IsIgnored(issue.Start.Line, issue.Rule) {
			continue
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// issueFor converts one pipeline result into a reportable issue.
// Conversions and edit-range conflicts are always reported; threshold
// rejections only in verbose mode; everything else is silently skipped.
func (e *Engine) issueFor(fset *token.FileSet, stmt ast.Stmt, res loop.Result) (tt.Issue, bool) {
	switch res.Reason {
	case loop.RejectNone:
		return tt.Issue{
			Rule:       RuleLoopConvert,
			Category:   "modernization",
			Message:    conversionMessage(res),
			Suggestion: res.Suggestion,
			Start:      fset.Position(stmt.Pos()),
			End:        fset.Position(stmt.End()),
			Severity:   tt.SeverityWarning,
			Confidence: res.Confidence,
		}, true

	case loop.RejectEditConflict:
		// Two competing valid rewrites; always surfaced.
		return tt.Issue{
			Rule:     RuleEditConflict,
			Category: "modernization",
			Message: fmt.Sprintf(
				"%s loop over %s is convertible, but its replacement overlaps an already accepted rewrite",
				res.Kind, res.Container),
			Start:      fset.Position(stmt.Pos()),
			End:        fset.Position(stmt.End()),
			Severity:   tt.SeverityInfo,
			Confidence: res.Confidence,
		}, true

	case loop.RejectConfidence:
		if !e.Verbose {
			return tt.Issue{}, false
		}
		return tt.Issue{
			Rule:     RuleLoopConvert,
			Category: "modernization",
			Message: fmt.Sprintf(
				"%s loop over %s could be converted, but its confidence (%s) is below the configured minimum",
				res.Kind, res.Container, res.Confidence),
			Note:       "raise with --min-confidence",
			Start:      fset.Position(stmt.Pos()),
			End:        fset.Position(stmt.End()),
			Severity:   tt.SeverityInfo,
			Confidence: res.Confidence,
		}, true
	}
	return tt.Issue{}, false
}

func conversionMessage(res loop.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s loop over %s can be converted to a range loop", res.Kind, res.Container)
	if res.ElemName != "" {
		fmt.Fprintf(&b, " (%s element %s)", res.Mode, res.ElemName)
	} else {
		fmt.Fprintf(&b, " (%s)", res.Mode)
	}
	return b.String()
}

// collectLoops gathers for and range statements in source order.
func collectLoops(file *ast.File) []ast.Stmt {
	var loops []ast.Stmt
	ast.Inspect(file, func(n ast.Node) bool {
		switch s := n.(type) {
		case *ast.ForStmt:
			loops = append(loops, s)
		case *ast.RangeStmt:
			loops = append(loops, s)
		}
		return true
	})
	return loops
}

// SourceCode stores the content of a source code file, line by line, for
// snippet rendering.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads a file and returns it as a SourceCode.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return &SourceCode{Lines: strings.Split(string(content), "\n")}, nil
}
