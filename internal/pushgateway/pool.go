package pushgateway

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueFull is returned by Enqueue when the job queue has no room.
var ErrQueueFull = errors.New("push queue full")

// ErrPoolClosed is returned by Enqueue after Shutdown has started.
var ErrPoolClosed = errors.New("push pool closed")

type Job struct {
	UserID int64
	Title  string
	Body   string
	Data   map[string]string
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

// Start runs the worker until stop is done. Jobs run under jobCtx.
func (w *Worker) Start(stop, jobCtx context.Context, wg *sync.WaitGroup, processFunc func(context.Context, Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing push", "worker_id", w.ID, "user_id", job.UserID)
				processFunc(jobCtx, job)
			case <-stop.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type PoolConfig struct {
	MaxWorkers int
	QueueSize  int
}

// Pool is a bounded queue feeding a fixed set of workers.
type Pool struct {
	logger  *slog.Logger
	process func(context.Context, Job)

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int

	stop      context.Context
	stopFn    context.CancelFunc
	jobCtx    context.Context
	abortJobs context.CancelFunc

	wg         sync.WaitGroup
	dispatched chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewPool(config PoolConfig, process func(context.Context, Job), logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}

	stop, stopFn := context.WithCancel(context.Background())
	jobCtx, abortJobs := context.WithCancel(context.Background())

	p := &Pool{
		logger:     logger,
		process:    process,
		jobQueue:   make(chan Job, queueSize),
		workerPool: make(chan chan Job, maxWorkers),
		maxWorkers: maxWorkers,
		stop:       stop,
		stopFn:     stopFn,
		jobCtx:     jobCtx,
		abortJobs:  abortJobs,
		dispatched: make(chan struct{}),
	}

	for i := 0; i < maxWorkers; i++ {
		NewWorker(i, p.workerPool, logger).Start(p.stop, p.jobCtx, &p.wg, p.process)
	}
	go p.dispatch()

	logger.Info("push worker pool started",
		"max_workers", maxWorkers,
		"queue_size", queueSize)

	return p
}

// dispatch hands queued jobs to idle workers until the queue is closed and empty.
func (p *Pool) dispatch() {
	defer close(p.dispatched)

	for job := range p.jobQueue {
		select {
		case jobChannel := <-p.workerPool:
			jobChannel <- job
		case <-p.jobCtx.Done():
			p.logger.Warn("push dropped during forced shutdown", "user_id", job.UserID)
		}
	}
}

// Enqueue never blocks. A full queue is reported as ErrQueueFull.
func (p *Pool) Enqueue(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobQueue <- job:
		p.logger.Debug("push queued", "user_id", job.UserID, "queue_length", len(p.jobQueue))
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and drains the queue. When ctx expires first,
// in-flight deliveries are cancelled and the rest of the queue is dropped.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.logger.Info("shutting down push worker pool", "pending", len(p.jobQueue))

	done := make(chan struct{})
	go func() {
		<-p.dispatched
		p.stopFn()
		p.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = ctx.Err()
		p.abortJobs()
		<-done
	}
	p.abortJobs()

	p.logger.Info("push worker pool shutdown complete")
	return err
}
