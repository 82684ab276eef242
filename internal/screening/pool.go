package screening

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mbhbank/account-service/shared/sentinel"
)

// Task is a unit of background work. The context is cancelled when the pool
// is forced to stop.
type Task func(ctx context.Context)

// Pool runs tasks on a fixed set of goroutines fed by a bounded queue.
type Pool struct {
	tasks  chan Task
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewPool(workers, queueSize int, logger *slog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		tasks:  make(chan Task, queueSize),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking. A full queue or a closed pool is
// reported as sentinel.ErrDispatch and the task is dropped.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("screening pool is closed: %w", sentinel.ErrDispatch)
	}
	select {
	case p.tasks <- task:
		return nil
	default:
		return fmt.Errorf("screening queue is full (%d): %w", cap(p.tasks), sentinel.ErrDispatch)
	}
}

// Close stops accepting tasks and waits for queued ones to finish. If ctx
// expires first, running tasks are cancelled and ctx.Err() is returned.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.run(task)
	}
}

func (p *Pool) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("screening task panicked", "panic", r)
		}
	}()
	task(p.ctx)
}
