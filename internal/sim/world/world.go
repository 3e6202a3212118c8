package world

import "voxelkeep.io/internal/sim/mathx"

// World is the registry of loaded chunks plus the set of chunk positions
// whose generation has been requested but not yet integrated.
// Accessed only from the tick goroutine.
type World struct {
	chunks  map[ChunkPos]*Chunk
	pending map[ChunkPos]struct{}
}

func New() *World {
	return &World{
		chunks:  map[ChunkPos]*Chunk{},
		pending: map[ChunkPos]struct{}{},
	}
}

func (w *World) Chunk(pos ChunkPos) (*Chunk, bool) {
	c, ok := w.chunks[pos]
	return c, ok
}

func (w *World) PutChunk(c *Chunk) {
	w.chunks[c.Pos()] = c
	delete(w.pending, c.Pos())
}

func (w *World) ChunkCount() int { return len(w.chunks) }

// LoadedChunks returns all resident chunks in unspecified order.
func (w *World) LoadedChunks() []*Chunk {
	out := make([]*Chunk, 0, len(w.chunks))
	for _, c := range w.chunks {
		out = append(out, c)
	}
	return out
}

// MarkPending records a generation request for pos. Returns false when the
// chunk is already loaded or already requested, so each position is
// submitted to the stream at most once.
func (w *World) MarkPending(pos ChunkPos) bool {
	if _, ok := w.chunks[pos]; ok {
		return false
	}
	if _, ok := w.pending[pos]; ok {
		return false
	}
	w.pending[pos] = struct{}{}
	return true
}

// Block returns the block at world coordinates, air when the owning chunk
// is not loaded.
func (w *World) Block(wx, wy, wz int) byte {
	c, ok := w.chunks[ChunkPosAt(wx, wz)]
	if !ok {
		return BlockAir
	}
	return c.Block(mathx.Mod(wx, ChunkSize), wy, mathx.Mod(wz, ChunkSize))
}

// SetBlock mutates the world and flags the owning chunk for persistence.
// A write into an unloaded chunk is dropped.
func (w *World) SetBlock(wx, wy, wz int, id byte) {
	c, ok := w.chunks[ChunkPosAt(wx, wz)]
	if !ok {
		return
	}
	c.SetBlock(mathx.Mod(wx, ChunkSize), wy, mathx.Mod(wz, ChunkSize), id)
	c.SetModified(true)
}
