package scheduler

import (
	"context"
	"sync"
	"time"
)

// Scheduler runs a job on a fixed interval in a background goroutine
type Scheduler struct {
	interval time.Duration
	job      func()

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// New creates a scheduler; call Start to begin ticking
func New(interval time.Duration, job func()) *Scheduler {
	return &Scheduler{
		interval: interval,
		job:      job,
	}
}

// Start launches the ticker goroutine. Starting a running scheduler is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(ctx, s.done)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.job()
		case <-ctx.Done():
			return
		}
	}
}

// Stop cancels the ticker and waits for an in-progress job to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.done
	s.running = false
}

// IsRunning reports whether the ticker goroutine is active
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
