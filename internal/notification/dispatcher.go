package notification

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is one unit of best-effort delivery.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs jobs on a fixed pool of workers fed by a bounded queue.
// Enqueue never blocks: a full queue drops the job.
type Dispatcher struct {
	queue   chan Job
	log     logrus.FieldLogger
	timeout time.Duration

	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(size int, log logrus.FieldLogger) *Dispatcher {
	if size < 1 {
		size = 1
	}
	return &Dispatcher{
		queue:   make(chan Job, size),
		log:     log,
		timeout: 15 * time.Second,
	}
}

func (d *Dispatcher) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for job := range d.queue {
		d.run(job)
	}
}

func (d *Dispatcher) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("job", job.Name).WithField("panic", r).Error("notification job panicked")
		}
	}()
	if err := job.Run(ctx); err != nil {
		d.log.WithError(err).WithField("job", job.Name).Warn("notification failed")
	}
}

// Enqueue reports whether the job was accepted.
func (d *Dispatcher) Enqueue(job Job) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- job:
		return true
	default:
		d.log.WithField("job", job.Name).Warn("notification queue full, dropping")
		return false
	}
}

// Stop closes the queue and waits for queued jobs until ctx expires.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
