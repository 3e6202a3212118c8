package save

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"voxelkeep.io/internal/sim/world"
)

// Chunk payload codec. Uncompressed layout (all integers big-endian):
//
//	[4] magic = 0x43484E4B ("CHNK")
//	[1] version = 1
//	[4] chunkX
//	[4] chunkZ
//	[4] block data length (= ChunkVolume)
//	[N] block data
//	[4] light data length (= ChunkVolume)
//	[N] light data
//
// The whole payload is zstd-compressed. The region layer treats the
// result as opaque bytes.

const (
	codecMagic   uint32 = 0x43484E4B
	codecVersion byte   = 1
)

// EncodeChunk serializes a chunk to a compressed payload. Works from
// snapshot copies, so encoding is safe while the tick goroutine owns the
// chunk.
func EncodeChunk(c *world.Chunk) ([]byte, error) {
	blocks := c.SnapshotBlocks()
	light := c.SnapshotLight()

	raw := bytes.NewBuffer(make([]byte, 0, len(blocks)+len(light)+32))
	var u32 [4]byte

	put := func(v uint32) {
		binary.BigEndian.PutUint32(u32[:], v)
		raw.Write(u32[:])
	}
	put(codecMagic)
	raw.WriteByte(codecVersion)
	put(uint32(int32(c.Pos().X)))
	put(uint32(int32(c.Pos().Z)))
	put(uint32(len(blocks)))
	raw.Write(blocks)
	put(uint32(len(light)))
	raw.Write(light)

	var out bytes.Buffer
	enc, err := zstd.NewWriter(&out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(raw.Bytes()); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DecodeChunk inflates and validates a payload, returning a chunk with
// Modified cleared (freshly loaded) and Dirty set (mesh rebuild needed).
func DecodeChunk(data []byte) (*world.Chunk, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("zstd inflate: %w", err)
	}

	r := bytes.NewReader(raw)
	var u32 [4]byte
	read32 := func() (uint32, error) {
		if _, err := io.ReadFull(r, u32[:]); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint32(u32[:]), nil
	}

	magic, err := read32()
	if err != nil {
		return nil, fmt.Errorf("chunk payload truncated: %w", err)
	}
	if magic != codecMagic {
		return nil, fmt.Errorf("invalid chunk magic: 0x%08x", magic)
	}
	version, err := r.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("chunk payload truncated: %w", err)
	}
	if version != codecVersion {
		return nil, fmt.Errorf("unsupported chunk version: %d", version)
	}

	cx, err := read32()
	if err != nil {
		return nil, fmt.Errorf("chunk payload truncated: %w", err)
	}
	cz, err := read32()
	if err != nil {
		return nil, fmt.Errorf("chunk payload truncated: %w", err)
	}

	readSection := func(name string) ([]byte, error) {
		n, err := read32()
		if err != nil {
			return nil, fmt.Errorf("chunk payload truncated: %w", err)
		}
		if n != world.ChunkVolume {
			return nil, fmt.Errorf("unexpected %s length: %d (want %d)", name, n, world.ChunkVolume)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("chunk payload truncated: %w", err)
		}
		return buf, nil
	}

	blocks, err := readSection("block data")
	if err != nil {
		return nil, err
	}
	light, err := readSection("light data")
	if err != nil {
		return nil, err
	}

	c := world.NewChunk(world.ChunkPos{X: int(int32(cx)), Z: int(int32(cz))})
	c.LoadBlocks(blocks)
	c.LoadLight(light)
	c.SetModified(false)
	c.SetDirty(true)
	return c, nil
}
