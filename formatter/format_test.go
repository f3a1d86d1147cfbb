package formatter

import (
	"go/token"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernlint/loopconv/internal"
	tt "github.com/modernlint/loopconv/internal/types"
)

func init() {
	color.NoColor = true
}

func sampleSnippet() *internal.SourceCode {
	return &internal.SourceCode{Lines: []string{
		"package main",
		"",
		"func main() {",
		"\tnums := []int{1, 2, 3}",
		"\tfor i := 0; i < len(nums); i++ {",
		"\t\tprintln(nums[i])",
		"\t}",
		"}",
	}}
}

func TestGenerateFormattedIssue(t *testing.T) {
	t.Parallel()

	issue := tt.Issue{
		Rule:       "loop-convert",
		Filename:   "main.go",
		Message:    "array-index loop over nums can be converted to a range loop",
		Suggestion: "for _, num := range nums {\n\tprintln(num)\n}",
		Start:      token.Position{Line: 5, Column: 2},
		End:        token.Position{Line: 7, Column: 3},
		Severity:   tt.SeverityWarning,
		Confidence: tt.ConfidenceSafe,
	}

	out := GenerateFormattedIssue([]tt.Issue{issue}, sampleSnippet())

	assert.Contains(t, out, "warning: ")
	assert.Contains(t, out, "loop-convert (safe)")
	assert.Contains(t, out, "main.go:5:2")
	assert.Contains(t, out, "for i := 0; i < len(nums); i++ {")
	assert.Contains(t, out, "can be converted to a range loop")
	assert.Contains(t, out, "Replace with:")
	assert.Contains(t, out, "for _, num := range nums {")
}

func TestFormatIssueWithoutSuggestion(t *testing.T) {
	t.Parallel()

	issue := tt.Issue{
		Rule:       "loop-convert-conflict",
		Filename:   "main.go",
		Message:    "replacement overlaps an already accepted rewrite",
		Note:       "convert the outer loop first",
		Start:      token.Position{Line: 5, Column: 2},
		End:        token.Position{Line: 7, Column: 3},
		Severity:   tt.SeverityInfo,
		Confidence: tt.ConfidenceReasonable,
	}

	out := GenerateFormattedIssue([]tt.Issue{issue}, sampleSnippet())

	assert.Contains(t, out, "info: ")
	assert.Contains(t, out, "overlaps an already accepted rewrite")
	assert.Contains(t, out, "Note: convert the outer loop first")
	assert.NotContains(t, out, "Replace with:")
}

func TestFindCommonIndent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"uniform tabs", []string{"\tfor {", "\t\tx()", "\t}"}, "\t"},
		{"mixed depth", []string{"\t\ta", "\tb"}, "\t"},
		{"no indent", []string{"a", "\tb"}, ""},
		{"empty lines skipped", []string{"\ta", "", "\tb"}, "\t"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, findCommonIndent(tc.lines), tc.name)
	}
}

func TestVisualColumn(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0, visualColumn("abc", 1))
	require.Equal(t, 2, visualColumn("abc", 3))
	// A leading tab expands to the next tab stop.
	require.Equal(t, tabWidth, visualColumn("\tx", 2))
}
