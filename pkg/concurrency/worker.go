// Package concurrency provides the bounded work pool the scheduler uses to
// fan out per-entity work inside a tick.
package concurrency

import (
	"fmt"
	"sync"
)

type Work func() error

type Result struct {
	Error error
}

// WorkPool runs queued jobs with at most workerCount of them in flight, so a
// large batch cannot overwhelm storage. A panicking job is converted into an
// error instead of taking the process down.
type WorkPool struct {
	workerCount int
	works       []Work
}

func NewWorkPool(workerCount int) *WorkPool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &WorkPool{workerCount: workerCount}
}

func (w *WorkPool) AddJob(job Work) {
	w.works = append(w.works, job)
}

// Run executes every queued job and blocks until all finish. Results are in
// completion order, not submission order.
func (w *WorkPool) Run() []Result {
	workers := w.workerCount
	if len(w.works) < workers {
		workers = len(w.works)
	}
	if workers == 0 {
		return nil
	}

	workChannel := make(chan Work)
	resultChannel := make(chan Result, len(w.works))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range workChannel {
				resultChannel <- Result{Error: runSafe(job)}
			}
		}()
	}

	for _, work := range w.works {
		workChannel <- work
	}
	close(workChannel)
	wg.Wait()
	close(resultChannel)

	results := make([]Result, 0, len(w.works))
	for r := range resultChannel {
		results = append(results, r)
	}
	return results
}

func runSafe(job Work) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("paniced with %v", r)
		}
	}()
	return job()
}
