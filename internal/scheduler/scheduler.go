package scheduler

import (
	"context"
	"sync"
)

// Task processes one named input.
type Task func(ctx context.Context, name string) (interface{}, error)

// Result is the outcome of a Task for one name.
type Result struct {
	Name  string
	Value interface{}
	Err   error
}

// Scheduler runs tasks with bounded concurrency.
type Scheduler interface {
	Run(ctx context.Context, names []string, task Task) []Result
}

// Impl provides a default scheduler implementation.
type Impl struct {
	semaphore chan struct{}
}

// NewScheduler constructs a scheduler running at most maxConcurrency tasks
// at once. Values below 1 mean 1.
func NewScheduler(maxConcurrency int) *Impl {
	return &Impl{semaphore: make(chan struct{}, normalizeConcurrency(maxConcurrency))}
}

// Run applies task to every name and blocks until all have finished.
// Results are returned in the order of names. Names not started before ctx
// is cancelled carry ctx.Err().
func (s *Impl) Run(ctx context.Context, names []string, task Task) []Result {
	results := make([]Result, len(names))
	var wg sync.WaitGroup

	for i, name := range names {
		results[i].Name = name
		if err := s.acquire(ctx); err != nil {
			results[i].Err = err
			continue
		}

		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			defer s.release()
			results[i].Value, results[i].Err = task(ctx, name)
		}(i, name)
	}

	wg.Wait()
	return results
}

func (s *Impl) acquire(ctx context.Context) error {
	// A cancelled context wins over a free slot.
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case s.semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Impl) release() {
	select {
	case <-s.semaphore:
	default:
	}
}

func normalizeConcurrency(value int) int {
	if value <= 0 {
		return 1
	}
	return value
}
