package world

import (
	"bytes"
	"testing"
)

func TestChunkPosAt_NegativeCoords(t *testing.T) {
	cases := []struct {
		wx, wz int
		want   ChunkPos
	}{
		{0, 0, ChunkPos{0, 0}},
		{15, 15, ChunkPos{0, 0}},
		{16, 0, ChunkPos{1, 0}},
		{-1, -1, ChunkPos{-1, -1}},
		{-16, -16, ChunkPos{-1, -1}},
		{-17, 0, ChunkPos{-2, 0}},
	}
	for _, c := range cases {
		if got := ChunkPosAt(c.wx, c.wz); got != c.want {
			t.Errorf("ChunkPosAt(%d,%d) = %s, want %s", c.wx, c.wz, got, c.want)
		}
	}
}

func TestChunk_BlockAccess(t *testing.T) {
	c := NewChunk(ChunkPos{X: 2, Z: -3})

	c.SetBlock(3, 50, 9, BlockStone)
	if got := c.Block(3, 50, 9); got != BlockStone {
		t.Fatalf("Block = %d, want stone", got)
	}

	// Out of bounds reads are air, writes are dropped.
	if c.Block(-1, 0, 0) != BlockAir || c.Block(0, WorldHeight, 0) != BlockAir {
		t.Fatalf("out-of-bounds read must be air")
	}
	c.SetBlock(16, 0, 0, BlockStone)
	c.SetBlock(0, -1, 0, BlockStone)
	if c.Block(15, 0, 0) != BlockAir {
		t.Fatalf("out-of-bounds write leaked into the chunk")
	}
}

func TestChunk_LightNibbles(t *testing.T) {
	c := NewChunk(ChunkPos{})

	c.SetSkyLight(1, 2, 3, 15)
	c.SetBlockLight(1, 2, 3, 7)
	if got := c.SkyLight(1, 2, 3); got != 15 {
		t.Fatalf("sky light = %d, want 15", got)
	}
	if got := c.BlockLight(1, 2, 3); got != 7 {
		t.Fatalf("block light = %d, want 7", got)
	}

	// Updating one nibble preserves the other.
	c.SetSkyLight(1, 2, 3, 4)
	if c.BlockLight(1, 2, 3) != 7 {
		t.Fatalf("sky light write clobbered block light")
	}
	c.SetBlockLight(1, 2, 3, 0)
	if c.SkyLight(1, 2, 3) != 4 {
		t.Fatalf("block light write clobbered sky light")
	}

	// Above the world everything is daylight.
	if c.SkyLight(0, WorldHeight, 0) != 15 {
		t.Fatalf("above-world sky light must be 15")
	}
}

func TestChunk_Flags(t *testing.T) {
	c := NewChunk(ChunkPos{})
	if c.Modified() {
		t.Fatalf("fresh chunk must not be modified")
	}
	if !c.Dirty() {
		t.Fatalf("fresh chunk needs an initial mesh build")
	}

	// Direct chunk writes mark dirty only; the modified flag belongs to
	// the world mutation path.
	c.SetDirty(false)
	c.SetBlock(0, 0, 0, BlockStone)
	if c.Modified() {
		t.Fatalf("chunk-level SetBlock must not set modified")
	}
	if !c.Dirty() {
		t.Fatalf("chunk-level SetBlock must set dirty")
	}
}

func TestChunk_Snapshots(t *testing.T) {
	c := NewChunk(ChunkPos{})
	c.SetBlock(5, 5, 5, BlockGrass)

	snap := c.SnapshotBlocks()
	c.SetBlock(5, 5, 5, BlockDirt)
	if snap[blockIndex(5, 5, 5)] != BlockGrass {
		t.Fatalf("snapshot must be an independent copy")
	}

	c2 := NewChunk(ChunkPos{})
	c2.LoadBlocks(snap)
	if !bytes.Equal(c2.SnapshotBlocks(), snap) {
		t.Fatalf("LoadBlocks round trip mismatch")
	}
}

func TestWorld_MarkPendingDedupe(t *testing.T) {
	w := New()
	pos := ChunkPos{X: 4, Z: -2}

	if !w.MarkPending(pos) {
		t.Fatalf("first request must be accepted")
	}
	if w.MarkPending(pos) {
		t.Fatalf("duplicate request must be rejected")
	}

	w.PutChunk(NewChunk(pos))
	if w.MarkPending(pos) {
		t.Fatalf("loaded chunk must not be requested again")
	}
	if w.ChunkCount() != 1 {
		t.Fatalf("chunk count = %d", w.ChunkCount())
	}
}

func TestWorld_SetBlock(t *testing.T) {
	w := New()
	c := NewChunk(ChunkPos{X: -1, Z: -1})
	w.PutChunk(c)

	// World coordinate (-1, -1) lands in chunk (-1,-1) local (15,15).
	w.SetBlock(-1, 10, -1, BlockStone)
	if got := w.Block(-1, 10, -1); got != BlockStone {
		t.Fatalf("world block = %d, want stone", got)
	}
	if c.Block(15, 10, 15) != BlockStone {
		t.Fatalf("local mapping wrong for negative world coordinates")
	}
	if !c.Modified() {
		t.Fatalf("world mutation must mark the chunk modified")
	}

	// Writes into unloaded chunks are dropped, reads are air.
	w.SetBlock(100, 10, 100, BlockStone)
	if w.Block(100, 10, 100) != BlockAir {
		t.Fatalf("unloaded chunk must read as air")
	}
}
