package logging

import (
	"strings"
	"sync"
)

// Buffer is a fixed-capacity rolling log buffer. It implements io.Writer so
// it can be attached to a Logger as an output, and external readers (the
// tuning surface) can snapshot its contents at any time without blocking
// writers for long.
type Buffer struct {
	mu       sync.Mutex
	lines    []string
	capacity int
	start    int // index of oldest line
	count    int
}

// NewBuffer creates a rolling buffer holding up to capacity lines.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 500
	}
	return &Buffer{
		lines:    make([]string, capacity),
		capacity: capacity,
	}
}

// Write appends formatted log output to the buffer. Multi-line writes are
// split so each stored entry is one line.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		b.push(line)
	}
	return len(p), nil
}

// Append adds a single line to the buffer.
func (b *Buffer) Append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.push(line)
}

func (b *Buffer) push(line string) {
	idx := (b.start + b.count) % b.capacity
	b.lines[idx] = line
	if b.count < b.capacity {
		b.count++
	} else {
		b.start = (b.start + 1) % b.capacity
	}
}

// Lines returns a copy of the buffered lines, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, b.count)
	for i := 0; i < b.count; i++ {
		out[i] = b.lines[(b.start+i)%b.capacity]
	}
	return out
}

// Len returns the number of buffered lines.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
