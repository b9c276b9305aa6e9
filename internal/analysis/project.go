package analysis

import (
	"os"
	"sync"

	"github.com/doITmagic/php-analyzer/internal/config"
	"github.com/doITmagic/php-analyzer/internal/issue"
	"github.com/doITmagic/php-analyzer/internal/symboldata"
)

// concurrencyLimit bounds how many files are parsed/visited at once
// within a single pass. Symboldata.Store and GlobalState guard every
// piece of state a concurrent pass visitor touches with a mutex (see
// symboldata.Store, GlobalState.constants), so fanning pass work out
// across goroutines only needs a bound on how many run at a time, the
// same shape the teacher's workspace manager uses to cap background
// indexing goroutines behind a mutex-guarded map (see
// internal/workspace/manager.go's GetMemoryForWorkspaceLanguage).
const concurrencyLimit = 8

// FileResult is one file's parsed Analyzer plus whatever issues its
// own Parse call raised, returned alongside AnalyzeFiles's aggregate
// emitter so a caller can still inspect per-file parse state (e.g. to
// skip a file whose Parse failed before handing it to a later pass).
type FileResult struct {
	Filename string
	Analyzer *Analyzer
	ParseErr error
}

// runConcurrent calls fn once for each index in [0, n), at most
// concurrencyLimit at a time, and waits for every call to finish
// before returning.
func runConcurrent(n int, fn func(i int)) {
	limit := concurrencyLimit
	if n < limit {
		limit = n
	}
	if limit <= 0 {
		return
	}
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(i)
		}(i)
	}
	wg.Wait()
}

// AnalyzeFiles drives every one of the three passes (symbol discovery,
// symbol cross-linking, expression/statement inference) across an
// entire set of files against one shared symboldata.Store and
// GlobalState, the multi-file generalization of spec §4.1's per-file
// Analyzer pipeline: a symbol referenced in one file and declared in
// another only resolves once every file's pass 1 has already run, so
// the three passes form barriers — every file finishes pass 1 before
// any file starts pass 2, and likewise for pass 2 before pass 3 — while
// the files within a single pass run concurrently, bounded by
// concurrencyLimit.
//
// cfg.Analysis.Pass3Reruns additional passes are run after the first,
// letting a type learned from one function's body (e.g. a property's
// inferred type written by its constructor) feed a use of that
// property analyzed earlier in file order within the same run.
func AnalyzeFiles(cfg *config.PHPAnalyzeConfig, filenames []string, emit issue.Emitter) ([]*FileResult, *symboldata.Store, *GlobalState) {
	store := symboldata.New()
	global := NewGlobalState()

	results := make([]*FileResult, len(filenames))
	runConcurrent(len(filenames), func(i int) {
		filename := filenames[i]
		f, err := os.Open(filename)
		r := &FileResult{Filename: filename}
		if err != nil {
			r.ParseErr = err
			results[i] = r
			return
		}
		defer f.Close()

		a := New(cfg, filename, f)
		r.Analyzer = a
		r.ParseErr = a.Parse(emit)
		results[i] = r
	})

	runnable := func() []*Analyzer {
		var out []*Analyzer
		for _, r := range results {
			if r.ParseErr == nil && r.Analyzer != nil {
				out = append(out, r.Analyzer)
			}
		}
		return out
	}()

	runConcurrent(len(runnable), func(i int) {
		runnable[i].FirstPass(store, emit)
	})
	runConcurrent(len(runnable), func(i int) {
		runnable[i].SecondPass(store, global, emit)
	})

	total := 1
	if cfg != nil {
		total += cfg.Analysis.Pass3Reruns
	}
	for pass := 0; pass < total; pass++ {
		// Every run but the last is purely to let inferred return/
		// property types feed later-analyzed call sites; only the
		// final run's diagnostics (against the now fixed-point state)
		// are reported, so earlier runs emit into a discard sink.
		passEmit := emit
		if pass < total-1 {
			passEmit = issue.NewSliceEmitter()
		}
		runConcurrent(len(runnable), func(i int) {
			runnable[i].ThirdPass(store, global, passEmit)
		})
	}

	return results, store, global
}
