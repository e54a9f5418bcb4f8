package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/triage/pkg/logger"
	"github.com/okian/triage/pkg/metrics"
)

// poolShutdownTimeout bounds how long Stop waits for the whole pool.
const poolShutdownTimeout = 30 * time.Second

// Pool runs a fixed set of workers over one queue.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup
	log     logger.Logger
}

// NewPool creates count workers sharing queue and signals.
func NewPool(count int, queue Queue, signals Incrementer) *Pool {
	if count < 1 {
		count = 1
	}
	p := &Pool{
		workers: make([]*Worker, count),
		log:     logger.Named("workerpool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(queue, signals, WithName(fmt.Sprintf("worker-%d", i)))
	}
	return p
}

// Start launches every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
	metrics.UpdateWorkerCount(len(p.workers))
	p.log.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop shuts every worker down and waits for the loops to exit.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.log.Warn(ctx, "worker shutdown", logger.Error(err))
		}
	}
	p.wg.Wait()
	metrics.UpdateWorkerCount(0)
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}
