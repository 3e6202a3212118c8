package stream

import "voxelkeep.io/internal/sim/world"

// ChunkTask carries one requested chunk position and its single-write
// result slot. Exactly one worker receives a task, writes the slot once,
// and hands the task to the completed queue; the consumer reads the slot
// once when draining.
type ChunkTask struct {
	pos    world.ChunkPos
	result *world.Chunk
}

func NewChunkTask(pos world.ChunkPos) *ChunkTask {
	return &ChunkTask{pos: pos}
}

func (t *ChunkTask) Pos() world.ChunkPos { return t.pos }

// Result is valid once the task has been drained from the completed queue.
func (t *ChunkTask) Result() *world.Chunk { return t.result }

func (t *ChunkTask) setResult(c *world.Chunk) { t.result = c }
