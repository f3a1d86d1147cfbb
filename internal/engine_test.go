package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/modernlint/loopconv/internal/loop"
	tt "github.com/modernlint/loopconv/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEngineRunSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		code       string
		wantIssues int
		wantRule   string
		contains   string
	}{
		{
			name: "convertible counting loop",
			code: `
package main

func main() {
	nums := []int{1, 2, 3}
	for i := 0; i < len(nums); i++ {
		println(nums[i])
	}
}
`,
			wantIssues: 1,
			wantRule:   RuleLoopConvert,
			contains:   "for _, num := range nums {",
		},
		{
			name: "already converted range loop",
			code: `
package main

func main() {
	nums := []int{1, 2, 3}
	for _, n := range nums {
		println(n)
	}
}
`,
			wantIssues: 0,
		},
		{
			name: "suppressed by an ignore comment",
			code: `
package main

func main() {
	nums := []int{1, 2, 3}
	//loopconv:ignore
	for i := 0; i < len(nums); i++ {
		println(nums[i])
	}
}
`,
			wantIssues: 0,
		},
		{
			name: "threshold rejection is silent by default",
			code: `
package main

type box struct{ xs []int }

func main() {
	b := box{}
	for i := 0; i < len(b.xs); i++ {
		println((b).xs[i])
	}
}
`,
			wantIssues: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			engine := NewEngine(loop.DefaultConfig())
			issues, err := engine.RunSource([]byte(tc.code))
			require.NoError(t, err)
			require.Len(t, issues, tc.wantIssues)
			if tc.wantIssues > 0 {
				assert.Equal(t, tc.wantRule, issues[0].Rule)
				assert.Equal(t, tt.SeverityWarning, issues[0].Severity)
				assert.Contains(t, issues[0].Suggestion, tc.contains)
			}
		})
	}
}

func TestEngineReportsEditConflicts(t *testing.T) {
	t.Parallel()

	const code = `
package main

func main() {
	a := []int{1, 2}
	b := []int{3, 4}
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			println(b[j])
		}
		println(a[i])
	}
}
`
	engine := NewEngine(loop.DefaultConfig())
	issues, err := engine.RunSource([]byte(code))
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, RuleLoopConvert, issues[0].Rule)
	assert.NotEmpty(t, issues[0].Suggestion)

	assert.Equal(t, RuleEditConflict, issues[1].Rule)
	assert.Equal(t, tt.SeverityInfo, issues[1].Severity)
	assert.Empty(t, issues[1].Suggestion)
}

func TestEngineVerboseSurfacesThresholdRejections(t *testing.T) {
	t.Parallel()

	const code = `
package main

type box struct{ xs []int }

func main() {
	b := box{}
	for i := 0; i < len(b.xs); i++ {
		println((b).xs[i])
	}
}
`
	engine := NewEngine(loop.DefaultConfig())
	engine.Verbose = true
	issues, err := engine.RunSource([]byte(code))
	require.NoError(t, err)
	require.Len(t, issues, 1)

	assert.Equal(t, RuleLoopConvert, issues[0].Rule)
	assert.Equal(t, tt.SeverityInfo, issues[0].Severity)
	assert.Empty(t, issues[0].Suggestion)
	assert.Contains(t, issues[0].Note, "--min-confidence")
}

func TestEngineRunFile(t *testing.T) {
	t.Parallel()

	const code = `package main

func main() {
	words := []string{"a", "b"}
	for i := 0; i < len(words); i++ {
		println(words[i])
	}
}
`
	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))

	engine := NewEngine(loop.DefaultConfig())
	issues, err := engine.Run(path)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	assert.Equal(t, path, issues[0].Filename)
	assert.Equal(t, 5, issues[0].Start.Line)
	assert.Contains(t, issues[0].Suggestion, "for _, word := range words {")
}

func TestEngineDeterministicNaming(t *testing.T) {
	t.Parallel()

	const code = `
package main

func main() {
	items := []int{1, 2}
	for i := 0; i < len(items); i++ {
		println(items[i])
	}
	for j := 0; j < len(items); j++ {
		println(items[j])
	}
}
`
	engine := NewEngine(loop.DefaultConfig())

	// Analysis fans out across goroutines; emission order must still be
	// source order, so the names never swap between runs.
	for range 10 {
		issues, err := engine.RunSource([]byte(code))
		require.NoError(t, err)
		require.Len(t, issues, 2)
		assert.Contains(t, issues[0].Suggestion, "for _, item := range items {")
		assert.Contains(t, issues[1].Suggestion, "for _, item2 := range items {")
	}
}

func TestReadSourceCode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("package main\n\nfunc main() {}\n"), 0o644))

	sc, err := ReadSourceCode(path)
	require.NoError(t, err)
	assert.Equal(t, "package main", sc.Lines[0])
}
