package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/air-quality-dashboard/internal/airquality"
)

type countingLoader struct {
	calls atomic.Int32
	err   error
}

func (l *countingLoader) Load(ctx context.Context) (*airquality.Dataset, error) {
	l.calls.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return airquality.NewDataset("test", airquality.NewTable(nil, nil)), nil
}

func TestSchedulerDisabled(t *testing.T) {
	loader := &countingLoader{}
	s := New(0, time.Second, loader, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if loader.calls.Load() != 0 {
		t.Fatalf("expected no reloads, got %d", loader.calls.Load())
	}
}

func TestSchedulerReloads(t *testing.T) {
	loader := &countingLoader{err: errors.New("source down")}
	s := New(time.Second, time.Second, loader, nil)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	if loader.calls.Load() != 0 {
		t.Fatalf("expected the first reload to wait for the interval")
	}

	deadline := time.Now().Add(3 * time.Second)
	for loader.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if loader.calls.Load() == 0 {
		t.Fatalf("expected at least one reload")
	}
}
