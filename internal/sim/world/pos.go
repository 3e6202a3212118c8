package world

import (
	"fmt"

	"voxelkeep.io/internal/sim/mathx"
)

const (
	// ChunkSize is the chunk edge length in blocks (x and z).
	ChunkSize = 16
	// WorldHeight is the block column height (y).
	WorldHeight = 128
	// ChunkVolume is blocks per chunk.
	ChunkVolume = ChunkSize * ChunkSize * WorldHeight
)

// ChunkPos identifies a chunk column. Unbounded, negatives included.
type ChunkPos struct {
	X int
	Z int
}

func (p ChunkPos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Z)
}

// ChunkPosAt maps world block coordinates to the owning chunk.
func ChunkPosAt(wx, wz int) ChunkPos {
	return ChunkPos{X: mathx.FloorDiv(wx, ChunkSize), Z: mathx.FloorDiv(wz, ChunkSize)}
}
