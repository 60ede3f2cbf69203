package scheduler

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// Task is one unit of work. Class selects the per-class limit.
type Task struct {
	Class string
	Run   func(ctx context.Context)
}

// Scheduler dispatches tasks in order onto a bounded worker pool.
type Scheduler struct {
	config *Config
	logger *slog.Logger

	// Worker pool state
	mu            sync.Mutex
	activeWorkers int
	classCounts   map[string]int
	global        chan struct{}
	byClass       map[string]chan struct{}
}

// New creates a new scheduler.
func New(cfg *Config, logger *slog.Logger) *Scheduler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	byClass := make(map[string]chan struct{})
	for class := range cfg.ByClass {
		if limit := cfg.GetClassLimit(class); limit > 0 {
			byClass[class] = make(chan struct{}, limit)
		}
	}

	return &Scheduler{
		config:      cfg,
		logger:      logger,
		classCounts: make(map[string]int),
		global:      make(chan struct{}, workers),
		byClass:     byClass,
	}
}

// Run starts tasks in input order, each once a global slot and its class
// slot are free, and waits for all started tasks to finish. Once ctx is
// cancelled no further task starts. The returned slice reports which tasks
// were started.
func (sch *Scheduler) Run(ctx context.Context, tasks []Task) []bool {
	started := make([]bool, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		if !sch.acquire(ctx, task.Class) {
			sch.logger.Debug("dispatch stopped", "started", i, "remaining", len(tasks)-i, "stats", sch.GetStats())
			break
		}
		started[i] = true
		sch.logger.Debug("dispatched", "task", i, "class", task.Class, "stats", sch.GetStats())

		wg.Add(1)
		go func(task Task) {
			defer wg.Done()
			defer sch.release(task.Class)
			task.Run(ctx)
		}(task)
	}

	wg.Wait()
	return started
}

// acquire blocks until a global and a class slot are held, or ctx is done.
func (sch *Scheduler) acquire(ctx context.Context, class string) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case sch.global <- struct{}{}:
	case <-ctx.Done():
		return false
	}
	if slots, ok := sch.byClass[class]; ok {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			<-sch.global
			return false
		}
	}
	// A slot and cancellation may become ready together.
	if ctx.Err() != nil {
		if slots, ok := sch.byClass[class]; ok {
			<-slots
		}
		<-sch.global
		return false
	}

	sch.mu.Lock()
	sch.activeWorkers++
	sch.classCounts[class]++
	sch.mu.Unlock()
	return true
}

func (sch *Scheduler) release(class string) {
	sch.mu.Lock()
	sch.activeWorkers--
	sch.classCounts[class]--
	sch.mu.Unlock()

	if slots, ok := sch.byClass[class]; ok {
		<-slots
	}
	<-sch.global
}

// GetStats returns current scheduler statistics.
func (sch *Scheduler) GetStats() map[string]interface{} {
	sch.mu.Lock()
	defer sch.mu.Unlock()

	classCounts := make(map[string]int)
	for k, v := range sch.classCounts {
		classCounts[k] = v
	}

	return map[string]interface{}{
		"active_workers": sch.activeWorkers,
		"workers":        cap(sch.global),
		"class_counts":   classCounts,
	}
}
