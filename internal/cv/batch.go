package cv

import (
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/mirrorworks/limbus-pilot/internal/logging"
)

// Batch fans one frame out to the matcher across a bounded worker pool for a
// set of templates and collects the results into a name-keyed map.
type Batch struct {
	match   func(*image.Gray, Template) Result
	workers int
	log     *logging.Logger
}

// NewBatch creates a batch scheduler backed by the given matcher.
func NewBatch(m *Matcher, log *logging.Logger) *Batch {
	if log == nil {
		log = logging.NewLogger("batch")
	}
	return &Batch{
		match:   m.Match,
		workers: runtime.NumCPU(),
		log:     log,
	}
}

// MatchAll matches every template against the frame in parallel and returns
// one entry per requested name. A template whose match panics maps to nil;
// one failing template never aborts the batch. The call returns only after
// every worker has finished.
func (b *Batch) MatchAll(frame *image.Gray, tmpls map[string]Template) map[string]*Result {
	results := make(map[string]*Result, len(tmpls))
	if len(tmpls) == 0 {
		return results
	}

	workers := b.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(tmpls) {
		workers = len(tmpls)
	}

	type job struct {
		name string
		tmpl Template
	}
	type outcome struct {
		name string
		res  *Result
	}

	jobs := make(chan job, len(tmpls))
	outcomes := make(chan outcome, len(tmpls))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes <- outcome{name: j.name, res: b.safeMatch(frame, j.tmpl)}
			}
		}()
	}

	for name, tmpl := range tmpls {
		jobs <- job{name: name, tmpl: tmpl}
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	for o := range outcomes {
		results[o.name] = o.res
	}
	return results
}

// safeMatch isolates a single template match so a panic in one worker task
// degrades to a nil result for that template only.
func (b *Batch) safeMatch(frame *image.Gray, tmpl Template) (res *Result) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error(fmt.Sprintf("match %s panicked", tmpl.Name), fmt.Errorf("%v", r))
			res = nil
		}
	}()
	r := b.match(frame, tmpl)
	return &r
}
