package engine

import (
	"math/rand/v2"
	"sync"
)

// task is one batch of atom indices handed to a worker, plus the barrier it
// reports completion to.
type task struct {
	lo, hi int
	fn     func(lo, hi int, rng *rand.Rand)
	done   *sync.WaitGroup
}

// pool runs stage functions over atom batches on a fixed set of workers.
// Each worker owns a PCG source seeded from the run seed and its worker id,
// so stochastic stages draw from worker-local state and never contend.
// Results are reproducible for a fixed seed when the pool has one worker;
// with more, batch-to-worker assignment varies between runs.
type pool struct {
	tasks   chan task
	workers sync.WaitGroup
}

func newPool(workers int, seed uint64) *pool {
	p := &pool{tasks: make(chan task, workers)}
	for id := 0; id < workers; id++ {
		p.workers.Add(1)
		go p.work(seed, uint64(id))
	}
	return p
}

func (p *pool) work(seed, id uint64) {
	defer p.workers.Done()
	rng := rand.New(rand.NewPCG(seed, id))
	for t := range p.tasks {
		t.fn(t.lo, t.hi, rng)
		t.done.Done()
	}
}

// each splits [0,n) into batches, dispatches them, and blocks until every
// batch has finished. That wait is the barrier between dependent stages.
// Must only be called from the goroutine driving the step; stage functions
// must never dispatch back into the pool.
func (p *pool) each(n, batch int, fn func(lo, hi int, rng *rand.Rand)) {
	var done sync.WaitGroup
	for lo := 0; lo < n; lo += batch {
		hi := min(lo+batch, n)
		done.Add(1)
		p.tasks <- task{lo: lo, hi: hi, fn: fn, done: &done}
	}
	done.Wait()
}

// close drains the pool. The pool must be idle.
func (p *pool) close() {
	close(p.tasks)
	p.workers.Wait()
}
