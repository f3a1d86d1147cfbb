package watcher

import (
	"sync"
	"time"
)

// debouncer collects file paths until no new one has arrived for delay,
// then flushes the deduplicated batch.
type debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]struct{}),
	}
}

func (d *debouncer) add(path string, flush func(files []string)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending[path] = struct{}{}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		if files := d.take(); len(files) > 0 {
			flush(files)
		}
	})
}

func (d *debouncer) take() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped || len(d.pending) == 0 {
		return nil
	}
	files := make([]string, 0, len(d.pending))
	for path := range d.pending {
		files = append(files, path)
	}
	d.pending = make(map[string]struct{})
	return files
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
