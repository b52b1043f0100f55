package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrNotStarted is returned by Enqueue before Start or after Stop.
	ErrNotStarted = errors.New("queue not running")
	// ErrFull is returned when the buffer has no room. Enqueue never blocks the caller.
	ErrFull = errors.New("queue full")
)

// Handler processes one item.
type Handler[T any] func(context.Context, T) error

// Config configures worker pool behaviour.
type Config struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	// DrainTimeout bounds how long Stop keeps processing buffered items.
	DrainTimeout time.Duration
	Logger       *zap.Logger
}

type item[T any] struct {
	value   T
	attempt int
}

// Queue dispatches items to a fixed pool of goroutines. Items still buffered
// when Stop is called are processed before the workers exit.
type Queue[T any] struct {
	name    string
	handler Handler[T]
	cfg     Config
	logger  *zap.Logger

	items   chan item[T]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	retries sync.WaitGroup

	mu      sync.RWMutex
	running bool
}

// New builds a queue with the provided handler.
func New[T any](name string, handler Handler[T], cfg Config) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 200 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  cfg.Logger.With(zap.String("queue", name)),
		items:   make(chan item[T], cfg.BufferSize),
	}
}

// Start launches the workers. A queue starts at most once; later calls are no-ops.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ctx != nil {
		return
	}
	q.ctx, q.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.running = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop refuses new items, drains the buffer within DrainTimeout and waits for the workers.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.mu.Unlock()

	q.retries.Wait()
	close(q.items)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(q.cfg.DrainTimeout):
		q.logger.Warn("queue drain timed out", zap.Int("pending", len(q.items)))
		q.cancel()
		<-done
	}
	q.cancel()
	q.logger.Info("queue stopped")
}

// Enqueue hands an item to the pool without blocking.
func (q *Queue[T]) Enqueue(v T) error {
	return q.push(item[T]{value: v})
}

// Len reports the number of buffered items.
func (q *Queue[T]) Len() int {
	return len(q.items)
}

func (q *Queue[T]) push(it item[T]) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return ErrNotStarted
	}
	select {
	case q.items <- it:
		return nil
	default:
		return ErrFull
	}
}

func (q *Queue[T]) worker() {
	defer q.wg.Done()
	for it := range q.items {
		if err := q.handler(q.ctx, it.value); err != nil {
			q.retry(it, err)
		}
	}
}

func (q *Queue[T]) retry(it item[T], err error) {
	it.attempt++
	if it.attempt > q.cfg.MaxRetries {
		q.logger.Error("job exceeded retries", zap.Int("attempts", it.attempt), zap.Error(err))
		return
	}
	q.logger.Warn("job failed, retrying", zap.Int("attempt", it.attempt), zap.Error(err))

	q.mu.RLock()
	running := q.running
	if running {
		q.retries.Add(1)
	}
	q.mu.RUnlock()
	if !running {
		q.logger.Error("job dropped during shutdown", zap.Error(err))
		return
	}

	go func() {
		defer q.retries.Done()
		timer := time.NewTimer(q.cfg.RetryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			return
		case <-timer.C:
		}
		if err := q.push(it); err != nil {
			q.logger.Error("failed to requeue job", zap.Error(err))
		}
	}()
}
