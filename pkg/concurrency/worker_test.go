package concurrency

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestWorkPoolRunsAllJobs(t *testing.T) {
	wp := NewWorkPool(4)
	var count int64
	for i := 0; i < 20; i++ {
		wp.AddJob(func() error {
			atomic.AddInt64(&count, 1)
			return nil
		})
	}

	results := wp.Run()
	if len(results) != 20 {
		t.Errorf("expected 20 results, got %d", len(results))
	}
	if count != 20 {
		t.Errorf("expected 20 executions, got %d", count)
	}
}

func TestWorkPoolBoundsConcurrency(t *testing.T) {
	wp := NewWorkPool(2)
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	block := make(chan struct{})

	for i := 0; i < 8; i++ {
		wp.AddJob(func() error {
			mu.Lock()
			inFlight++
			if inFlight > maxInFlight {
				maxInFlight = inFlight
			}
			mu.Unlock()

			<-block

			mu.Lock()
			inFlight--
			mu.Unlock()
			return nil
		})
	}

	done := make(chan []Result)
	go func() { done <- wp.Run() }()
	close(block)
	<-done

	if maxInFlight > 2 {
		t.Errorf("expected at most 2 concurrent jobs, saw %d", maxInFlight)
	}
}

func TestWorkPoolCollectsErrors(t *testing.T) {
	wp := NewWorkPool(3)
	wantErr := errors.New("boom")
	wp.AddJob(func() error { return nil })
	wp.AddJob(func() error { return wantErr })
	wp.AddJob(func() error { return nil })

	failures := 0
	for _, r := range wp.Run() {
		if r.Error != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected 1 failure, got %d", failures)
	}
}

func TestWorkPoolRecoversFromPanic(t *testing.T) {
	wp := NewWorkPool(1)
	wp.AddJob(func() error { panic("bad record") })
	wp.AddJob(func() error { return nil })

	results := wp.Run()
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	failures := 0
	for _, r := range results {
		if r.Error != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected panic converted to a single error, got %d failures", failures)
	}
}

func TestWorkPoolEmptyRun(t *testing.T) {
	if results := NewWorkPool(4).Run(); len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
