package fixer

import (
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/modernlint/loopconv/internal/types"
)

const fixtureSource = `package main

func main() {
	nums := []int{1, 2, 3}
	for i := 0; i < len(nums); i++ {
		println(nums[i])
	}
}
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.go")
	require.NoError(t, os.WriteFile(path, []byte(fixtureSource), 0o644))
	return path
}

func loopIssue(confidence tt.Confidence) tt.Issue {
	return tt.Issue{
		Rule:    "loop-convert",
		Message: "array-index loop over nums can be converted to a range loop",
		Suggestion: "for _, num := range nums {\n" +
			"\tprintln(num)\n" +
			"}",
		Start:      token.Position{Line: 5, Offset: 44},
		End:        token.Position{Line: 7, Offset: 100},
		Severity:   tt.SeverityWarning,
		Confidence: confidence,
	}
}

func TestFixRewritesLoop(t *testing.T) {
	t.Parallel()

	path := writeFixture(t)
	f := New(false, tt.ConfidenceReasonable)

	require.NoError(t, f.Fix(path, []tt.Issue{loopIssue(tt.ConfidenceSafe)}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "for _, num := range nums {")
	assert.Contains(t, string(content), "println(num)")
	assert.NotContains(t, string(content), "nums[i]")
}

func TestFixSkipsLowConfidence(t *testing.T) {
	t.Parallel()

	path := writeFixture(t)
	f := New(false, tt.ConfidenceReasonable)

	require.NoError(t, f.Fix(path, []tt.Issue{loopIssue(tt.ConfidenceRisky)}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fixtureSource, string(content))
}

func TestFixSkipsIssuesWithoutSuggestion(t *testing.T) {
	t.Parallel()

	path := writeFixture(t)
	f := New(false, tt.ConfidenceRisky)

	conflict := loopIssue(tt.ConfidenceSafe)
	conflict.Rule = "loop-convert-conflict"
	conflict.Suggestion = ""

	require.NoError(t, f.Fix(path, []tt.Issue{conflict}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fixtureSource, string(content))
}

func TestFixDryRunLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	path := writeFixture(t)
	f := New(true, tt.ConfidenceReasonable)

	require.NoError(t, f.Fix(path, []tt.Issue{loopIssue(tt.ConfidenceSafe)}))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fixtureSource, string(content))
}

func TestExtractIndent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\t", extractIndent("\tfor {"))
	assert.Equal(t, "    ", extractIndent("    x := 1"))
	assert.Equal(t, "", extractIndent("package main"))
}

func TestApplyIndent(t *testing.T) {
	t.Parallel()

	got := applyIndent("for {\n\tx\n}", "\t")
	assert.Equal(t, "\tfor {\n\t\tx\n\t}", got)
}
