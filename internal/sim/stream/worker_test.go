package stream

import (
	"sync/atomic"
	"testing"
	"time"

	"voxelkeep.io/internal/sim/world"
)

// stampGen writes a recognizable block derived from the chunk position
// and counts invocations.
type stampGen struct {
	calls *atomic.Int64
	delay time.Duration
}

func (g *stampGen) Generate(c *world.Chunk) {
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	c.SetBlock(0, 0, 0, byte(c.Pos().X&0x7F))
	c.SetBlock(1, 0, 0, byte(c.Pos().Z&0x7F))
	if g.calls != nil {
		g.calls.Add(1)
	}
}

func drainAll(t *testing.T, p *Pool, want int, timeout time.Duration) []*ChunkTask {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var done []*ChunkTask
	for len(done) < want {
		if time.Now().After(deadline) {
			t.Fatalf("drained %d of %d tasks before timeout", len(done), want)
		}
		done = append(done, p.Drain()...)
		time.Sleep(time.Millisecond)
	}
	return done
}

func TestPool_AllTasksCompleteExactlyOnce(t *testing.T) {
	var calls atomic.Int64
	p := NewPool(4, 64, 5*time.Millisecond, func() Generator {
		return &stampGen{calls: &calls}
	})
	defer p.Stop()

	const side = 8 // 64 tasks across 4 workers
	want := map[world.ChunkPos]bool{}
	for z := -side / 2; z < side/2; z++ {
		for x := -side / 2; x < side/2; x++ {
			pos := world.ChunkPos{X: x, Z: z}
			want[pos] = false
			p.Submit(pos)
		}
	}

	done := drainAll(t, p, len(want), 5*time.Second)
	if len(done) != len(want) {
		t.Fatalf("completed %d tasks, want %d", len(done), len(want))
	}
	for _, task := range done {
		seen, ok := want[task.Pos()]
		if !ok {
			t.Fatalf("unexpected completion %s", task.Pos())
		}
		if seen {
			t.Fatalf("duplicate completion %s", task.Pos())
		}
		want[task.Pos()] = true

		c := task.Result()
		if c == nil {
			t.Fatalf("completed task %s has no result", task.Pos())
		}
		if c.Pos() != task.Pos() {
			t.Fatalf("result pos %s for task %s", c.Pos(), task.Pos())
		}
		if c.Block(0, 0, 0) != byte(task.Pos().X&0x7F) || c.Block(1, 0, 0) != byte(task.Pos().Z&0x7F) {
			t.Fatalf("result for %s was not generated", task.Pos())
		}
	}
	if got := calls.Load(); got != int64(len(want)) {
		t.Fatalf("generator ran %d times, want %d", got, len(want))
	}
}

func TestPool_StopReturnsWithinPollBound(t *testing.T) {
	poll := 20 * time.Millisecond
	p := NewPool(3, 8, poll, func() Generator { return &stampGen{} })

	// Workers are idle; Stop must come back within roughly one poll
	// interval per worker check, not hang on the empty queue.
	start := time.Now()
	p.Stop()
	if elapsed := time.Since(start); elapsed > 20*poll {
		t.Fatalf("Stop took %s with poll interval %s", elapsed, poll)
	}
}

func TestPool_InFlightTaskFinishesDuringStop(t *testing.T) {
	var calls atomic.Int64
	p := NewPool(1, 8, 5*time.Millisecond, func() Generator {
		return &stampGen{calls: &calls, delay: 50 * time.Millisecond}
	})

	p.Submit(world.ChunkPos{X: 9, Z: 9})

	// Give the worker time to claim the task, then stop mid-generation.
	time.Sleep(15 * time.Millisecond)
	p.Stop()

	if got := calls.Load(); got != 1 {
		t.Fatalf("in-flight generation must complete, calls = %d", got)
	}
	done := p.Drain()
	if len(done) != 1 || done[0].Result() == nil {
		t.Fatalf("completed in-flight task not drained: %v", done)
	}
}

func TestPool_StopLeavesQueuedTasksUnprocessed(t *testing.T) {
	// One slow worker, several queued tasks: after Stop at most the
	// claimed task completes, the rest stay pending.
	var calls atomic.Int64
	p := NewPool(1, 16, 5*time.Millisecond, func() Generator {
		return &stampGen{calls: &calls, delay: 30 * time.Millisecond}
	})

	for i := 0; i < 6; i++ {
		p.Submit(world.ChunkPos{X: i, Z: 0})
	}
	time.Sleep(10 * time.Millisecond)
	p.Stop()

	// The worker observes stop between iterations: it may finish the task
	// it already claimed, and possibly one more if stop landed mid-select,
	// but never the whole queue.
	if got := calls.Load(); got >= 6 {
		t.Fatalf("stop did not bound processing, calls = %d", got)
	}
	if p.Queues().PendingTasks() == 0 {
		t.Fatalf("expected unprocessed tasks after stop")
	}
}

func TestQueues_TryPopAndDrain(t *testing.T) {
	q := NewQueues(4)

	if _, ok := q.TryPopCompleted(); ok {
		t.Fatalf("empty completed queue must not pop")
	}
	if q.PendingTasks() != 0 {
		t.Fatalf("fresh queue has pending tasks")
	}

	a := NewChunkTask(world.ChunkPos{X: 1})
	b := NewChunkTask(world.ChunkPos{X: 2})
	q.pushCompleted(a)
	q.pushCompleted(b)

	got, ok := q.TryPopCompleted()
	if !ok || got != a {
		t.Fatalf("TryPopCompleted order: got %v", got)
	}
	rest := q.DrainCompleted()
	if len(rest) != 1 || rest[0] != b {
		t.Fatalf("DrainCompleted: got %v", rest)
	}
	if len(q.DrainCompleted()) != 0 {
		t.Fatalf("drain of empty queue must return nothing")
	}
}
