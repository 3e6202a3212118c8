package stream

import "sync"

// Queues is the producer/consumer hand-off between the caller, the
// generation workers, and the tick loop: a bounded blocking task queue
// feeding the workers, and an unbounded completed queue the consumer
// drains without blocking.
type Queues struct {
	tasks chan *ChunkTask

	mu        sync.Mutex
	completed []*ChunkTask
}

func NewQueues(capacity int) *Queues {
	if capacity <= 0 {
		capacity = 256
	}
	return &Queues{tasks: make(chan *ChunkTask, capacity)}
}

// Submit enqueues a generation task, blocking while the queue is full.
func (q *Queues) Submit(t *ChunkTask) {
	q.tasks <- t
}

// PendingTasks reports queued-but-unclaimed tasks (diagnostics only).
func (q *Queues) PendingTasks() int {
	return len(q.tasks)
}

func (q *Queues) pushCompleted(t *ChunkTask) {
	q.mu.Lock()
	q.completed = append(q.completed, t)
	q.mu.Unlock()
}

// TryPopCompleted pops one finished task without blocking.
func (q *Queues) TryPopCompleted() (*ChunkTask, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.completed) == 0 {
		return nil, false
	}
	t := q.completed[0]
	q.completed = q.completed[1:]
	return t, true
}

// DrainCompleted takes every finished task currently queued.
func (q *Queues) DrainCompleted() []*ChunkTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.completed
	q.completed = nil
	return out
}
