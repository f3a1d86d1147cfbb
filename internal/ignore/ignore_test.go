package ignore

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) (*Manager, *token.FileSet) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)
	return ParseComments(file, fset), fset
}

func TestIgnoreComments(t *testing.T) {
	t.Parallel()

	const src = `package main

func main() {
	//loopconv:ignore
	for i := 0; i < 3; i++ {
	}

	for j := 0; j < 3; j++ { //loopconv:ignore
	}

	//loopconv:ignore loop-convert
	for k := 0; k < 3; k++ {
	}

	for l := 0; l < 3; l++ {
	}
}
`
	m, _ := parse(t, src)

	// Comment above the loop: line 4 covers lines 4 and 5.
	assert.True(t, m.IsIgnored(5, "loop-convert"))
	// Trailing comment covers its own line.
	assert.True(t, m.IsIgnored(8, "loop-convert"))
	// Rule-scoped comment matches only the named rule.
	assert.True(t, m.IsIgnored(12, "loop-convert"))
	assert.False(t, m.IsIgnored(12, "loop-convert-conflict"))
	// Unannotated loop.
	assert.False(t, m.IsIgnored(15, "loop-convert"))
}

func TestIgnoreRuleList(t *testing.T) {
	t.Parallel()

	const src = `package main

//loopconv:ignore loop-convert, loop-convert-conflict
var _ = 0
`
	m, _ := parse(t, src)

	assert.True(t, m.IsIgnored(4, "loop-convert"))
	assert.True(t, m.IsIgnored(4, "loop-convert-conflict"))
	assert.False(t, m.IsIgnored(4, "other-rule"))
}

func TestIgnoreRequiresDirectiveBoundary(t *testing.T) {
	t.Parallel()

	const src = `package main

//loopconv:ignores all sorts of things, this comment claims
var _ = 0

//loopconv:ignore	loop-convert
var _ = 1
`
	m, _ := parse(t, src)

	// A longer word sharing the prefix is prose, not a directive.
	assert.False(t, m.IsIgnored(4, "loop-convert"))
	// A tab separator is as good as a space.
	assert.True(t, m.IsIgnored(7, "loop-convert"))
	assert.False(t, m.IsIgnored(7, "loop-convert-conflict"))
}
