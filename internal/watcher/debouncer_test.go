package watcher

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerBatchesEvents(t *testing.T) {
	t.Parallel()

	d := newDebouncer(30 * time.Millisecond)
	got := make(chan []string, 1)
	flush := func(files []string) { got <- files }

	d.add("a.go", flush)
	d.add("b.go", flush)
	d.add("a.go", flush)

	select {
	case files := <-got:
		sort.Strings(files)
		assert.Equal(t, []string{"a.go", "b.go"}, files)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}
	d.stop()
}

func TestDebouncerResetsOnNewEvents(t *testing.T) {
	t.Parallel()

	d := newDebouncer(80 * time.Millisecond)
	got := make(chan []string, 1)
	flush := func(files []string) { got <- files }

	d.add("a.go", flush)
	time.Sleep(40 * time.Millisecond)
	d.add("b.go", flush)

	// The first timer was reset; nothing may fire before the second
	// window has elapsed.
	select {
	case <-got:
		t.Fatal("flushed before the quiet period elapsed")
	case <-time.After(40 * time.Millisecond):
	}

	select {
	case files := <-got:
		require.Len(t, files, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("debouncer never flushed")
	}
	d.stop()
}

func TestDebouncerStopDropsPending(t *testing.T) {
	t.Parallel()

	d := newDebouncer(30 * time.Millisecond)
	got := make(chan []string, 1)

	d.add("a.go", func(files []string) { got <- files })
	d.stop()

	select {
	case <-got:
		t.Fatal("flushed after stop")
	case <-time.After(100 * time.Millisecond):
	}
}
