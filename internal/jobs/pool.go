package jobs

import (
	"context"
	"sync"
)

// workerPool runs handle for queued job ids on a fixed number of goroutines.
type workerPool struct {
	tasks  chan string
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func newWorkerPool(workers, queueSize int, handle func(ctx context.Context, id string)) *workerPool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &workerPool{
		tasks:  make(chan string, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-p.ctx.Done():
					return
				case id := <-p.tasks:
					if p.ctx.Err() != nil {
						return
					}
					handle(p.ctx, id)
				}
			}
		}()
	}

	return p
}

// submit enqueues id without blocking and reports whether it was accepted.
func (p *workerPool) submit(id string) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.tasks <- id:
		return true
	default:
		return false
	}
}

// shutdown cancels running handlers, drops queued ids and waits for workers.
func (p *workerPool) shutdown() {
	p.cancel()
	p.wg.Wait()
}
