// Package jobs runs extraction tasks across a pool of workers. All
// workers pull from a single shared queue, so load balancing falls out
// of channel semantics.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by Submit when the queue has no room.
var ErrQueueFull = errors.New("worker queue full")

// Task is one unit of extraction work: a single analysis file.
type Task struct {
	ID     string
	Source string
}

// NewTask builds a task for the given analysis file.
func NewTask(source string) Task {
	return Task{ID: uuid.New().String(), Source: source}
}

// Outcome is what a worker reports back for one task.
type Outcome struct {
	Task  Task
	Value any
	Err   error
}

// Handler executes one task. Handlers must be safe for concurrent use.
type Handler func(ctx context.Context, task Task) (any, error)

// Pool manages the worker goroutines and the shared queue.
type Pool struct {
	name        string
	logger      *slog.Logger
	workerCount int
	handler     Handler

	queue   chan Task
	results chan Outcome

	inFlight atomic.Int32
}

// PoolConfig configures a new pool.
type PoolConfig struct {
	Name        string
	Logger      *slog.Logger
	WorkerCount int // default: runtime.NumCPU()
	QueueSize   int // default: 1024
	Handler     Handler
}

// NewPool creates a pool. Start must be called before Submit.
func NewPool(cfg PoolConfig) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := cfg.Name
	if name == "" {
		name = "extract"
	}
	workerCount := cfg.WorkerCount
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1024
	}
	return &Pool{
		name:        name,
		logger:      logger.With("pool", name, "workers", workerCount),
		workerCount: workerCount,
		handler:     cfg.Handler,
		queue:       make(chan Task, queueSize),
		results:     make(chan Outcome, queueSize),
	}
}

// Start launches the workers and blocks until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	p.logger.Debug("pool starting")
	for i := 0; i < p.workerCount; i++ {
		go p.worker(ctx, i)
	}
	<-ctx.Done()
	p.logger.Debug("pool stopping")
}

func (p *Pool) worker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-p.queue:
			p.inFlight.Add(1)
			value, err := p.run(ctx, task)
			p.inFlight.Add(-1)
			select {
			case p.results <- Outcome{Task: task, Value: value, Err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				p.logger.Debug("task failed", "worker", id, "task", task.ID, "source", task.Source, "error", err)
			}
		}
	}
}

func (p *Pool) run(ctx context.Context, task Task) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", task.ID, r)
		}
	}()
	return p.handler(ctx, task)
}

// Submit queues a task without blocking.
func (p *Pool) Submit(task Task) error {
	select {
	case p.queue <- task:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrQueueFull, p.name)
	}
}

// Results is the channel workers report outcomes on.
func (p *Pool) Results() <-chan Outcome {
	return p.results
}

// Status reports queue depth and in-flight count.
func (p *Pool) Status() Status {
	return Status{
		Name:       p.name,
		Workers:    p.workerCount,
		InFlight:   int(p.inFlight.Load()),
		QueueDepth: len(p.queue),
	}
}

// Status is a point-in-time snapshot of a pool.
type Status struct {
	Name       string `json:"name"`
	Workers    int    `json:"workers"`
	InFlight   int    `json:"in_flight"`
	QueueDepth int    `json:"queue_depth"`
}
