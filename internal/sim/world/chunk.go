package world

// Chunk is a 16×128×16 column of blocks with a packed light map.
// Each cell stores a block id byte; light packs sky level in the high
// nibble and block light in the low nibble.
type Chunk struct {
	pos    ChunkPos
	blocks []byte
	light  []byte

	// modified gates persistence: set on world mutation, cleared by a
	// successful save. Not persisted.
	modified bool
	// dirty hints the external mesher that geometry is stale. Not persisted.
	dirty bool
}

func NewChunk(pos ChunkPos) *Chunk {
	return &Chunk{
		pos:    pos,
		blocks: make([]byte, ChunkVolume),
		light:  make([]byte, ChunkVolume),
		dirty:  true,
	}
}

func blockIndex(x, y, z int) int {
	return y*ChunkSize*ChunkSize + z*ChunkSize + x
}

func inChunkBounds(x, y, z int) bool {
	return x >= 0 && x < ChunkSize && y >= 0 && y < WorldHeight && z >= 0 && z < ChunkSize
}

func (c *Chunk) Pos() ChunkPos { return c.pos }

// Block returns the block id at local coordinates, air for out of bounds.
func (c *Chunk) Block(x, y, z int) byte {
	if !inChunkBounds(x, y, z) {
		return BlockAir
	}
	return c.blocks[blockIndex(x, y, z)]
}

// SetBlock writes a block id at local coordinates. Out of bounds is a no-op.
// Marks the chunk dirty but not modified: gameplay mutation goes through
// World.SetBlock, which owns the modified flag.
func (c *Chunk) SetBlock(x, y, z int, id byte) {
	if !inChunkBounds(x, y, z) {
		return
	}
	c.blocks[blockIndex(x, y, z)] = id
	c.dirty = true
}

// SkyLight returns the sky light level (0–15) at local coordinates.
// Above the world everything is daylight.
func (c *Chunk) SkyLight(x, y, z int) int {
	if !inChunkBounds(x, y, z) {
		if y >= WorldHeight {
			return 15
		}
		return 0
	}
	return int(c.light[blockIndex(x, y, z)]>>4) & 0xF
}

func (c *Chunk) SetSkyLight(x, y, z, level int) {
	if !inChunkBounds(x, y, z) {
		return
	}
	i := blockIndex(x, y, z)
	c.light[i] = byte(level<<4) | (c.light[i] & 0x0F)
}

// BlockLight returns the emitted light level (0–15) at local coordinates.
func (c *Chunk) BlockLight(x, y, z int) int {
	if !inChunkBounds(x, y, z) {
		return 0
	}
	return int(c.light[blockIndex(x, y, z)]) & 0xF
}

func (c *Chunk) SetBlockLight(x, y, z, level int) {
	if !inChunkBounds(x, y, z) {
		return
	}
	i := blockIndex(x, y, z)
	c.light[i] = (c.light[i] & 0xF0) | byte(level&0xF)
}

func (c *Chunk) Modified() bool     { return c.modified }
func (c *Chunk) SetModified(m bool) { c.modified = m }
func (c *Chunk) Dirty() bool        { return c.dirty }
func (c *Chunk) SetDirty(d bool)    { c.dirty = d }

// SnapshotBlocks copies the block array so the codec can encode off-thread.
func (c *Chunk) SnapshotBlocks() []byte {
	out := make([]byte, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// SnapshotLight copies the packed light map.
func (c *Chunk) SnapshotLight() []byte {
	out := make([]byte, len(c.light))
	copy(out, c.light)
	return out
}

// LoadBlocks replaces the block array from decoded data.
func (c *Chunk) LoadBlocks(data []byte) {
	copy(c.blocks, data)
}

// LoadLight replaces the packed light map from decoded data.
func (c *Chunk) LoadLight(data []byte) {
	copy(c.light, data)
}
