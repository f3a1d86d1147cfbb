package fixer

import (
	"bytes"
	"fmt"
	"go/format"
	"go/parser"
	"go/token"
	"os"
	"sort"
	"strings"

	tt "github.com/modernlint/loopconv/internal/types"
)

// Fixer applies suggested loop rewrites to source files. Issues below the
// confidence threshold are left alone; edits are applied back to front so
// earlier offsets stay valid, then the whole file is re-parsed and
// reformatted.
type Fixer struct {
	DryRun        bool
	MinConfidence tt.Confidence
}

func New(dryRun bool, minConfidence tt.Confidence) *Fixer {
	return &Fixer{
		DryRun:        dryRun,
		MinConfidence: minConfidence,
	}
}

// Fix rewrites filename in place according to issues. Issues without a
// suggestion (for example conflict reports) are skipped.
func (f *Fixer) Fix(filename string, issues []tt.Issue) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	sort.Slice(issues, func(i, j int) bool {
		return issues[i].End.Offset > issues[j].End.Offset
	})

	lines := strings.Split(string(content), "\n")
	applied := 0

	for _, issue := range issues {
		if issue.Suggestion == "" || issue.Confidence < f.MinConfidence {
			continue
		}

		if f.DryRun {
			fmt.Printf("Would fix issue in %s at line %d: %s\n", filename, issue.Start.Line, issue.Message)
			fmt.Printf("Suggestion:\n%s\n", issue.Suggestion)
			continue
		}

		startLine := issue.Start.Line - 1
		endLine := issue.End.Line - 1
		if startLine < 0 || endLine >= len(lines) || startLine > endLine {
			continue
		}

		indent := extractIndent(lines[startLine])
		suggestion := applyIndent(issue.Suggestion, indent)

		lines = append(lines[:startLine], append([]string{suggestion}, lines[endLine+1:]...)...)
		applied++
	}

	if f.DryRun || applied == 0 {
		return nil
	}

	newContent := strings.Join(lines, "\n")

	fset := token.NewFileSet()
	astFile, err := parser.ParseFile(fset, filename, newContent, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("failed to parse rewritten file: %w", err)
	}

	var buf bytes.Buffer
	if err := format.Node(&buf, fset, astFile); err != nil {
		return fmt.Errorf("failed to format rewritten file: %w", err)
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Printf("Fixed %d loop(s) in %s\n", applied, filename)
	return nil
}

func extractIndent(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// applyIndent indents every line of a multi-line suggestion to match the
// line being replaced.
func applyIndent(code, indent string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n")
}
