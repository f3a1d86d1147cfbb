// Package analyzer adapts the loop conversion pipeline to the
// golang.org/x/tools/go/analysis framework, so it can run under go vet,
// gopls, or multichecker drivers with suggested fixes.
package analyzer

import (
	"fmt"
	"go/ast"
	"go/token"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"

	"github.com/modernlint/loopconv/internal/ignore"
	"github.com/modernlint/loopconv/internal/loop"
)

const (
	name = "loopconvert"
	doc  = `loopconvert suggests rewriting counting and cursor loops as range loops`
	url  = "https://pkg.go.dev/github.com/modernlint/loopconv/analyzer"
)

// New creates a configured analyzer instance. The pre-configured
// [Analyzer] variable is sufficient for command-line drivers; New exists
// for programmatic embedding.
func New(opts ...Option) *analysis.Analyzer {
	r := &runner{cfg: loop.DefaultConfig()}
	for _, opt := range opts {
		opt(r)
	}

	return &analysis.Analyzer{
		Name:     name,
		Doc:      doc,
		URL:      url,
		Run:      r.run,
		Requires: []*analysis.Analyzer{inspect.Analyzer},
	}
}

// Analyzer is a pre-configured instance with the default conversion
// policy.
var Analyzer = New()

type runner struct {
	cfg     loop.Config
	verbose bool
}

func (r *runner) run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	// Group loops per file in source order. One tracking context per
	// file keeps rewrites of sibling loops from overlapping and their
	// synthesized names distinct.
	filter := []ast.Node{(*ast.ForStmt)(nil), (*ast.RangeStmt)(nil)}
	loopsByFile := make(map[*ast.File][]ast.Stmt)
	insp.Preorder(filter, func(n ast.Node) {
		file := enclosingFile(pass, n.Pos())
		if file == nil {
			return
		}
		loopsByFile[file] = append(loopsByFile[file], n.(ast.Stmt))
	})

	for _, file := range pass.Files {
		stmts := loopsByFile[file]
		if len(stmts) == 0 {
			continue
		}

		src, err := pass.ReadFile(pass.Fset.Position(file.Pos()).Filename)
		if err != nil {
			continue
		}

		p := &loop.Pass{
			Fset:  pass.Fset,
			File:  file,
			Info:  pass.TypesInfo,
			Pkg:   pass.Pkg,
			Src:   src,
			Sizes: pass.TypesSizes,
			Cfg:   r.cfg,
		}

		tracking := loop.NewTracking()
		ignores := ignore.ParseComments(file, pass.Fset)

		for _, stmt := range stmts {
			a := loop.Analyze(p, stmt)
			res := loop.Emit(p, a, tracking)
			r.report(pass, ignores, stmt, res)
		}
	}
	return nil, nil
}

func (r *runner) report(pass *analysis.Pass, ignores *ignore.Manager, stmt ast.Stmt, res loop.Result) {
	line := pass.Fset.Position(stmt.Pos()).Line
	if ignores.IsIgnored(line, name) {
		return
	}

	switch res.Reason {
	case loop.RejectNone:
		pass.Report(analysis.Diagnostic{
			Pos:     stmt.Pos(),
			End:     stmt.End(),
			Message: fmt.Sprintf("%s loop over %s can be converted to a range loop", res.Kind, res.Container),
			SuggestedFixes: []analysis.SuggestedFix{{
				Message: "Convert to range loop",
				TextEdits: []analysis.TextEdit{{
					Pos:     stmt.Pos(),
					End:     stmt.End(),
					NewText: []byte(res.Suggestion),
				}},
			}},
		})

	case loop.RejectEditConflict:
		// Two competing valid rewrites; always surfaced.
		pass.Report(analysis.Diagnostic{
			Pos:     stmt.Pos(),
			End:     stmt.End(),
			Message: fmt.Sprintf("%s loop over %s is convertible, but its replacement overlaps an already accepted rewrite", res.Kind, res.Container),
		})

	case loop.RejectConfidence:
		if !r.verbose {
			return
		}
		pass.Report(analysis.Diagnostic{
			Pos:     stmt.Pos(),
			End:     stmt.End(),
			Message: fmt.Sprintf("%s loop over %s could be converted, but its confidence (%s) is below the configured minimum", res.Kind, res.Container, res.Confidence),
		})
	}
}

func enclosingFile(pass *analysis.Pass, pos token.Pos) *ast.File {
	for _, file := range pass.Files {
		if file.FileStart <= pos && pos < file.FileEnd {
			return file
		}
	}
	return nil
}
