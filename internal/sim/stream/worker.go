package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"voxelkeep.io/internal/sim/world"
)

// DefaultPollInterval bounds how long a worker waits for a task before
// re-checking its stop flag.
const DefaultPollInterval = 100 * time.Millisecond

// Generator is the terrain synthesis pipeline consumed by workers.
// Implementations must be deterministic: the same seed and chunk
// position always yield bit-identical output.
type Generator interface {
	Generate(c *world.Chunk)
}

// Worker pulls tasks from the queue, synthesizes the chunk, and pushes
// the finished task onto the completed queue. Stop is advisory and
// observed between iterations; an in-flight generation always runs to
// completion.
type Worker struct {
	queues   *Queues
	pipeline Generator
	poll     time.Duration
	stopped  atomic.Bool
}

func NewWorker(q *Queues, pipeline Generator, poll time.Duration) *Worker {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &Worker{queues: q, pipeline: pipeline, poll: poll}
}

// Run loops until Stop is observed. Call from its own goroutine.
func (w *Worker) Run() {
	for {
		if w.stopped.Load() {
			return
		}
		select {
		case t := <-w.queues.tasks:
			c := world.NewChunk(t.Pos())
			w.pipeline.Generate(c)
			t.setResult(c)
			w.queues.pushCompleted(t)
		case <-time.After(w.poll):
		}
	}
}

// Stop requests the worker exit after the current iteration.
func (w *Worker) Stop() {
	w.stopped.Store(true)
}

// Pool owns the shared queues and a fixed set of workers. Each worker
// gets its own pipeline instance: construction cost is duplicated, chunk
// output is not, since pipelines are pure functions of (seed, position).
type Pool struct {
	queues  *Queues
	workers []*Worker
	wg      sync.WaitGroup
}

// NewPool starts n workers over a fresh queue pair. newPipeline is
// invoked once per worker.
func NewPool(n int, queueCap int, poll time.Duration, newPipeline func() Generator) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{queues: NewQueues(queueCap)}
	for i := 0; i < n; i++ {
		w := NewWorker(p.queues, newPipeline(), poll)
		p.workers = append(p.workers, w)
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.Run()
		}()
	}
	return p
}

// Submit requests generation of pos. Blocks while the task queue is full.
func (p *Pool) Submit(pos world.ChunkPos) *ChunkTask {
	t := NewChunkTask(pos)
	p.queues.Submit(t)
	return t
}

// Drain returns every completed task without blocking.
func (p *Pool) Drain() []*ChunkTask {
	return p.queues.DrainCompleted()
}

// Queues exposes the underlying hand-off structures.
func (p *Pool) Queues() *Queues { return p.queues }

// Stop signals all workers and waits for them to exit. Tasks left on the
// queue stay unprocessed; callers that need them must drain or resubmit.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.Stop()
	}
	p.wg.Wait()
}
