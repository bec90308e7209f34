package workerpool

import (
	"fmt"
	"log/slog"
	"sync"
)

// Worker is the single-method capability executed by pool goroutines. An
// implementation receives one unit of work and writes zero or more results
// to the shared output channel.
type Worker[I, O any] interface {
	Execute(input I, out chan<- O)
}

// Factory builds one worker per pool goroutine. The id is stable for the
// lifetime of the pool and is only meant for diagnostics.
type Factory[I, O any] func(id int) Worker[I, O]

// taskQueueDepth bounds how many submissions can sit unclaimed before
// Submit blocks. Producers submit at most a resident window at a time, so
// this is never reached in practice.
const taskQueueDepth = 128

// Pool runs a fixed number of worker goroutines over a shared task queue.
// Results from all workers interleave on a single output channel in
// completion order, which is unrelated to submission order.
type Pool[I, O any] struct {
	tasks  chan I
	output chan O
	wg     sync.WaitGroup
	log    *slog.Logger

	closeOnce sync.Once
}

// New spawns workers goroutines, each executing tasks built by factory.
// Panics if workers is not positive.
func New[I, O any](workers int, factory Factory[I, O], log *slog.Logger) *Pool[I, O] {
	if workers <= 0 {
		panic(fmt.Sprintf("workerpool: worker count must be positive, got %d", workers))
	}
	if log == nil {
		log = slog.Default()
	}

	p := &Pool[I, O]{
		tasks:  make(chan I, taskQueueDepth),
		output: make(chan O, taskQueueDepth),
		log:    log,
	}

	p.wg.Add(workers)
	for id := 0; id < workers; id++ {
		go p.loop(id, factory(id))
	}

	return p
}

func (p *Pool[I, O]) loop(id int, worker Worker[I, O]) {
	defer p.wg.Done()
	for input := range p.tasks {
		p.execute(id, worker, input)
	}
}

// execute runs a single task. A panicking task must not take down the
// worker goroutine or the queue shared with its siblings, so the recover
// sits here rather than in loop.
func (p *Pool[I, O]) execute(id int, worker Worker[I, O], input I) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("worker task panicked", "worker", id, "panic", r)
		}
	}()
	worker.Execute(input, p.output)
}

// Submit enqueues one unit of work. It only blocks while handing the task
// off to the shared queue.
func (p *Pool[I, O]) Submit(input I) {
	p.tasks <- input
}

// Output is the shared result channel. It is multi-producer, single
// consumer: exactly one goroutine may read from it. The channel is closed
// once Close has joined every worker.
func (p *Pool[I, O]) Output() <-chan O {
	return p.output
}

// Close signals every worker to terminate and blocks until all of them
// have drained the queue and exited. Tasks that are mid-execution run to
// completion first. Safe to call more than once.
func (p *Pool[I, O]) Close() {
	p.closeOnce.Do(func() {
		close(p.tasks)
		p.wg.Wait()
		close(p.output)
	})
}
