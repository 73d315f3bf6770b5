package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Rotator wraps a log file and keeps it bounded to the most recent maxLines lines.
// The file is rewritten only after twice the capacity has been written so
// rewrites stay infrequent.
type Rotator struct {
	writer   io.Writer
	lines    *lineRing
	filePath string
	mu       sync.Mutex
}

// NewRotator creates a Rotator writing to writer, which must be the open file at filePath.
func NewRotator(writer io.Writer, maxLines int, filePath string) *Rotator {
	return &Rotator{
		writer:   writer,
		lines:    newLineRing(maxLines),
		filePath: filePath,
	}
}

// Write implements io.Writer.
func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.writer.Write(p)
	if err != nil {
		return n, err
	}

	for line := range strings.SplitSeq(strings.TrimRight(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}

		r.lines.add(line)

		if r.lines.written >= r.lines.capacity()*2 {
			if err := r.rewrite(); err != nil {
				return n, fmt.Errorf("failed to rotate log file: %w", err)
			}

			r.lines.written = r.lines.size
		}
	}

	return n, nil
}

// rewrite replaces the file contents with the buffered lines and reopens it for appending.
func (r *Rotator) rewrite() error {
	lines := r.lines.snapshot()
	if len(lines) == 0 {
		return nil
	}

	temp, err := os.CreateTemp(filepath.Dir(r.filePath), "hub-log-")
	if err != nil {
		return err
	}

	tempPath := temp.Name()

	if _, err := temp.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		temp.Close()
		os.Remove(tempPath)

		return err
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return err
	}

	if closer, ok := r.writer.(io.Closer); ok {
		closer.Close()
	}

	// Windows refuses to rename over an existing file
	os.Remove(r.filePath)

	if err := os.Rename(tempPath, r.filePath); err != nil {
		return err
	}

	file, err := os.OpenFile(r.filePath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	r.writer = file

	return nil
}

// lineRing is a fixed-capacity circular buffer of log lines.
type lineRing struct {
	buf     []string
	head    int // next write position
	size    int
	written int // lines added since the last rewrite
}

func newLineRing(capacity int) *lineRing {
	return &lineRing{buf: make([]string, max(capacity, 1))}
}

func (l *lineRing) capacity() int {
	return len(l.buf)
}

func (l *lineRing) add(line string) {
	l.buf[l.head] = line
	l.head = (l.head + 1) % len(l.buf)

	if l.size < len(l.buf) {
		l.size++
	}

	l.written++
}

// snapshot returns the buffered lines oldest first.
func (l *lineRing) snapshot() []string {
	if l.size == 0 {
		return nil
	}

	out := make([]string, l.size)
	start := (l.head - l.size + len(l.buf)) % len(l.buf)

	for i := range l.size {
		out[i] = l.buf[(start+i)%len(l.buf)]
	}

	return out
}
