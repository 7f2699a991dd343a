package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFn is a periodic job. ctx is cancelled when the scheduler stops.
type TaskFn func(ctx context.Context) error

// TaskStats describes a registered task for the admin API.
type TaskStats struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Runs      int64         `json:"runs"`
	Failures  int64         `json:"failures"`
	LastRun   time.Time     `json:"last_run"`
	LastError string        `json:"last_error,omitempty"`
}

type task struct {
	stats  TaskStats
	stopCh chan struct{}
}

// Scheduler runs named tasks on fixed intervals.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[string]*task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a Scheduler.
func New(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		tasks:  make(map[string]*task),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// AddTicker registers fn to run every interval. A task with the same name
// is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	if interval <= 0 {
		s.logger.Warn("scheduler task ignored: non-positive interval", zap.String("name", name))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tasks[name]; ok {
		close(old.stopCh)
	}
	t := &task{
		stats:  TaskStats{Name: name, Interval: interval},
		stopCh: make(chan struct{}),
	}
	s.tasks[name] = t

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.run(t, fn)
			case <-t.stopCh:
				return
			case <-s.ctx.Done():
				return
			}
		}
	}()
	s.logger.Info("scheduler task registered", zap.String("name", name), zap.Duration("interval", interval))
}

func (s *Scheduler) run(t *task, fn TaskFn) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn(s.ctx)
	}()

	s.mu.Lock()
	t.stats.Runs++
	t.stats.LastRun = time.Now()
	t.stats.LastError = ""
	if err != nil {
		t.stats.Failures++
		t.stats.LastError = err.Error()
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduler task failed", zap.String("task", t.stats.Name), zap.Error(err))
	}
}

// Remove stops and removes a task by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[name]; ok {
		close(t.stopCh)
		delete(s.tasks, name)
	}
}

// Stop cancels every task and waits for running ones to return.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

// Stats returns a snapshot of every registered task, sorted by name.
func (s *Scheduler) Stats() []TaskStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TaskStats, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
