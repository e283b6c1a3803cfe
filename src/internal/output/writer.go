package output

import (
	"fmt"
	"io"
	"sync"
)

// Writer serializes line output from concurrent resolution workers. All
// lines of one call are written under a single lock acquisition, so a
// multi-line result (host:80 followed by host:443) is never torn apart by
// another worker.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w, which is typically os.Stdout.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteLines writes each line followed by a newline. Write failures are not
// surfaced per line; a broken downstream pipe kills the process anyway.
func (w *Writer) WriteLines(lines []string) {
	if len(lines) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, line := range lines {
		fmt.Fprintln(w.w, line)
	}
}
