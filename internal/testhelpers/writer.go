package testhelpers

import (
	"io"
	"strings"
	"testing"
)

// Writer sends each write to t.Log, so log output only shows for failing tests.
type Writer struct {
	t    *testing.T
	done chan struct{}
}

func NewWriter(t *testing.T) io.Writer {
	w := &Writer{t: t, done: make(chan struct{})}
	t.Cleanup(func() { close(w.done) })
	return w
}

// Write panics once the test has finished: a late write means something
// outlived the test.
func (w *Writer) Write(p []byte) (int, error) {
	select {
	case <-w.done:
		panic("testhelpers: write after test completion")
	default:
	}
	if out := strings.TrimSuffix(string(p), "\n"); out != "" {
		w.t.Log(out)
	}
	return len(p), nil
}
