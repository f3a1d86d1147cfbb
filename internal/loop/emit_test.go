package loop

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackingReserve(t *testing.T) {
	t.Parallel()

	tr := NewTracking()

	require.True(t, tr.Reserve(token.Pos(10), token.Pos(20)))
	assert.False(t, tr.Reserve(token.Pos(15), token.Pos(25)), "partial overlap")
	assert.False(t, tr.Reserve(token.Pos(5), token.Pos(30)), "containing range")
	assert.False(t, tr.Reserve(token.Pos(12), token.Pos(18)), "contained range")
	assert.True(t, tr.Reserve(token.Pos(20), token.Pos(30)), "adjacent ranges do not overlap")
	assert.True(t, tr.Reserve(token.Pos(1), token.Pos(10)))
}

func TestLineRange(t *testing.T) {
	t.Parallel()

	text := "for {\n\tx := c[i]\n\tuse(x)\n}"
	start, end := lineRange(text, 7, 16) // the x := c[i] statement
	assert.Equal(t, "\tx := c[i]\n", text[start:end])
}

// A loop nested inside an accepted rewrite must come back as an edit
// conflict, never as a second overlapping edit.
func TestNestedRewriteConflicts(t *testing.T) {
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
	p, loops := newTestPass(t, code, DefaultConfig())
	require.Len(t, loops, 2)

	tr := NewTracking()
	outer := Emit(p, Analyze(p, loops[0]), tr)
	inner := Emit(p, Analyze(p, loops[1]), tr)

	require.True(t, outer.Emitted(), "reason: %s", outer.Reason)
	require.False(t, inner.Emitted())
	assert.Equal(t, RejectEditConflict, inner.Reason)
}
