package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// trackingTask records the highest number of tasks running at once.
type trackingTask struct {
	running int32
	max     int32
	delay   time.Duration
}

func (t *trackingTask) run(ctx context.Context, name string) (interface{}, error) {
	n := atomic.AddInt32(&t.running, 1)
	defer atomic.AddInt32(&t.running, -1)
	for {
		old := atomic.LoadInt32(&t.max)
		if n <= old || atomic.CompareAndSwapInt32(&t.max, old, n) {
			break
		}
	}
	time.Sleep(t.delay)
	return "done:" + name, nil
}

func TestSchedulerMaxConcurrency(t *testing.T) {
	task := &trackingTask{delay: 2 * time.Millisecond}
	s := NewScheduler(2)

	results := s.Run(context.Background(), []string{"a", "b", "c", "d", "e"}, task.run)

	if max := atomic.LoadInt32(&task.max); max > 2 {
		t.Fatalf("expected max concurrency 2, got %d", max)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
}

func TestSchedulerKeepsInputOrder(t *testing.T) {
	s := NewScheduler(4)
	names := []string{"100.conf", "101.conf", "102.conf"}

	results := s.Run(context.Background(), names, func(ctx context.Context, name string) (interface{}, error) {
		if name == "101.conf" {
			return nil, errors.New("broken")
		}
		return len(name), nil
	})

	for i, r := range results {
		if r.Name != names[i] {
			t.Fatalf("expected result %d to be %q, got %q", i, names[i], r.Name)
		}
	}
	if results[1].Err == nil || results[1].Value != nil {
		t.Fatalf("expected error result for 101.conf, got %+v", results[1])
	}
	if results[0].Err != nil || results[0].Value != 8 {
		t.Fatalf("unexpected result for 100.conf: %+v", results[0])
	}
}

func TestSchedulerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	results := NewScheduler(1).Run(ctx, []string{"a", "b"}, func(ctx context.Context, name string) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})

	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected no task to run, got %d", calls)
	}
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("expected context.Canceled for %q, got %v", r.Name, r.Err)
		}
	}
}

func TestNormalizeConcurrency(t *testing.T) {
	tests := map[int]int{-3: 1, 0: 1, 1: 1, 8: 8}
	for in, expected := range tests {
		if got := normalizeConcurrency(in); got != expected {
			t.Fatalf("normalizeConcurrency(%d): expected %d, got %d", in, expected, got)
		}
	}
}
