package stage

import (
	"context"

	"github.com/ygrebnov/fibers"
	"github.com/ygrebnov/fibers/mr"
	"github.com/ygrebnov/fibers/pool"
)

// job is one input of a stage together with its position in the input list.
type job struct {
	index int
	spec  mr.FileSpec
}

// dispatcher starts one goroutine per job and hands it a pooled worker. With a bound, at
// most maxWorkers jobs run at a time and the dispatcher suspends until a slot frees up.
// After cancellation it stops starting jobs but never abandons the ones already running.
type dispatcher struct {
	pool     pool.Pool[*worker]
	sem      *fibers.Semaphore
	inflight fibers.BlockingCounter
}

func newDispatcher(maxWorkers uint) *dispatcher {
	d := &dispatcher{}
	if maxWorkers > 0 {
		d.pool = pool.NewFixed(maxWorkers, newWorker)
		d.sem = fibers.NewSemaphore(uint32(maxWorkers))
	} else {
		d.pool = pool.NewDynamic(newWorker)
	}
	return d
}

// run executes jobs and returns once every started job has finished. Jobs that were never
// started because ctx was cancelled are returned.
func (d *dispatcher) run(ctx context.Context, jobs []job, exec func(context.Context, *worker, job)) []job {
	// the dispatcher holds one count itself so the counter cannot reach zero while jobs
	// are still being started.
	d.inflight = fibers.NewBlockingCounter(1)

	var skipped []job
	for i, j := range jobs {
		if d.sem != nil {
			d.sem.Wait(1)
		}
		if ctx.Err() != nil {
			if d.sem != nil {
				d.sem.Signal(1)
			}
			skipped = jobs[i:]
			break
		}

		d.inflight.Add(1)
		go func() {
			defer d.inflight.Dec()
			if d.sem != nil {
				defer d.sem.Signal(1)
			}
			w := d.pool.Get()
			defer d.pool.Put(w)
			exec(ctx, w, j)
		}()
	}

	d.inflight.Dec()
	d.inflight.Wait()
	return skipped
}
