package issue

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"sync"
)

// SliceEmitter collects every emitted Issue in memory, safe for
// concurrent use across the goroutines a multi-file analysis run
// spawns (see analysis.AnalyzeFiles). Sorted() provides a stable,
// file-then-position order for deterministic test assertions and CLI
// output.
type SliceEmitter struct {
	mu     sync.Mutex
	issues []Issue
}

func NewSliceEmitter() *SliceEmitter {
	return &SliceEmitter{}
}

func (s *SliceEmitter) Emit(i Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = append(s.issues, i)
}

func (s *SliceEmitter) Issues() []Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Issue, len(s.issues))
	copy(out, s.issues)
	return out
}

func (s *SliceEmitter) Sorted() []Issue {
	out := s.Issues()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position.Filename != out[j].Position.Filename {
			return out[i].Position.Filename < out[j].Position.Filename
		}
		return out[i].Position.StartByte < out[j].Position.StartByte
	})
	return out
}

// WriterEmitter streams each Issue as one formatted line to an
// underlying io.Writer as it is emitted, for CLI consumption. Writes
// are serialized with a mutex since multiple files may analyze
// concurrently.
type WriterEmitter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func NewWriterEmitter(w io.Writer) *WriterEmitter {
	return &WriterEmitter{w: bufio.NewWriter(w)}
}

func (e *WriterEmitter) Emit(i Issue) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.w, i.String())
	e.w.Flush()
}

// MultiEmitter fans one Issue out to several Emitters, used when the
// CLI both streams to stdout and accumulates a summary count.
type MultiEmitter struct {
	Emitters []Emitter
}

func (m MultiEmitter) Emit(i Issue) {
	for _, e := range m.Emitters {
		e.Emit(i)
	}
}
