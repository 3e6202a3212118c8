package region

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"voxelkeep.io/internal/sim/mathx"
)

// Region-based chunk storage. One file holds up to 32×32 = 1024 chunk
// payloads.
//
// File layout:
//   [0, 8192)   header: 1024 entries × (offset uint32, length uint32),
//               big-endian, entry index = localZ*32 + localX (floor-modulo).
//   [8192, EOF) concatenated payloads, addressed only via the header.
//
// offset 0 + length 0 marks an absent slot. The header occupies the start
// of the file, so no payload can legitimately begin at offset 0.
//
// File naming: r.<rx>.<rz>.dat with rx = floorDiv(cx, 32), rz = floorDiv(cz, 32).

const (
	// Size is chunks per region axis.
	Size = 32

	entryCount = Size * Size
	headerSize = entryCount * 8
)

// ToRegion maps a chunk coordinate to its region coordinate.
// Floor division: chunk -1 belongs to region -1, not region 0.
func ToRegion(chunkCoord int) int {
	return mathx.FloorDiv(chunkCoord, Size)
}

// File owns one region file. The mutex serializes every operation,
// including the full read-merge-rewrite sequence of a write, so
// concurrent saves into the same region cannot interleave.
type File struct {
	mu   sync.Mutex
	path string
	rx   int
	rz   int

	offsets [entryCount]uint32
	lengths [entryCount]uint32
}

func NewFile(dir string, rx, rz int) *File {
	return &File{
		path: filepath.Join(dir, fmt.Sprintf("r.%d.%d.dat", rx, rz)),
		rx:   rx,
		rz:   rz,
	}
}

func (f *File) Path() string { return f.path }
func (f *File) Rx() int      { return f.rx }
func (f *File) Rz() int      { return f.rz }

func entryIndex(cx, cz int) int {
	lx := mathx.Mod(cx, Size)
	lz := mathx.Mod(cz, Size)
	return lz*Size + lx
}

// LoadHeader reads the header table into memory. A missing or undersized
// file is not an error: all slots stay absent.
func (f *File) LoadHeader() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	fh, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open region %s: %w", f.path, err)
	}
	defer fh.Close()

	st, err := fh.Stat()
	if err != nil {
		return fmt.Errorf("stat region %s: %w", f.path, err)
	}
	if st.Size() < headerSize {
		return nil // corrupt or truncated header: treat as empty region
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(fh, hdr[:]); err != nil {
		return fmt.Errorf("read region header %s: %w", f.path, err)
	}
	for i := 0; i < entryCount; i++ {
		f.offsets[i] = binary.BigEndian.Uint32(hdr[i*8:])
		f.lengths[i] = binary.BigEndian.Uint32(hdr[i*8+4:])
	}
	return nil
}

// HasChunk reports whether the slot for (cx, cz) is populated.
func (f *File) HasChunk(cx, cz int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := entryIndex(cx, cz)
	return f.offsets[i] != 0 && f.lengths[i] != 0
}

// ReadChunkData returns the payload for (cx, cz), or (nil, nil) when the
// slot is absent. An I/O failure — including the file vanishing after
// LoadHeader — is an error, never a silent absence.
func (f *File) ReadChunkData(cx, cz int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := entryIndex(cx, cz)
	if f.offsets[i] == 0 || f.lengths[i] == 0 {
		return nil, nil
	}

	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open region %s: %w", f.path, err)
	}
	defer fh.Close()

	data := make([]byte, f.lengths[i])
	if _, err := fh.ReadAt(data, int64(f.offsets[i])); err != nil {
		return nil, fmt.Errorf("read chunk (%d,%d) from %s: %w", cx, cz, f.path, err)
	}
	return data, nil
}

// ChunkData is one batch entry for WriteChunks.
type ChunkData struct {
	CX   int
	CZ   int
	Data []byte
}

// WriteChunkData stores one payload via the compacting rewrite.
func (f *File) WriteChunkData(cx, cz int, data []byte) error {
	return f.WriteChunks([]ChunkData{{CX: cx, CZ: cz, Data: data}})
}

// WriteChunks merges a batch into the region and rewrites the whole file:
// every live payload is read, the batch is merged in, and header plus data
// section are written back compacted. O(live payloads) per call — the
// price of a header that exactly matches the data section at all times.
func (f *File) WriteChunks(batch []ChunkData) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	all, err := f.readAllLocked()
	if err != nil {
		return err
	}
	for _, cd := range batch {
		all[entryIndex(cd.CX, cd.CZ)] = cd.Data
	}
	return f.writeAllLocked(all)
}

// readAllLocked loads every live payload keyed by entry index. Caller
// holds f.mu.
func (f *File) readAllLocked() (map[int][]byte, error) {
	out := map[int][]byte{}

	fh, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("open region %s: %w", f.path, err)
	}
	defer fh.Close()

	st, err := fh.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat region %s: %w", f.path, err)
	}
	if st.Size() < headerSize {
		return out, nil
	}

	for i := 0; i < entryCount; i++ {
		if f.offsets[i] == 0 || f.lengths[i] == 0 {
			continue
		}
		data := make([]byte, f.lengths[i])
		if _, err := fh.ReadAt(data, int64(f.offsets[i])); err != nil {
			return nil, fmt.Errorf("read slot %d from %s: %w", i, f.path, err)
		}
		out[i] = data
	}
	return out, nil
}

// writeAllLocked rewrites the file from scratch: data section first with
// offsets recomputed sequentially, truncate to the exact end, then the
// header. Caller holds f.mu.
func (f *File) writeAllLocked(all map[int][]byte) error {
	for i := range f.offsets {
		f.offsets[i] = 0
		f.lengths[i] = 0
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("mkdir region dir: %w", err)
	}
	fh, err := os.OpenFile(f.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open region %s: %w", f.path, err)
	}
	defer func() { _ = fh.Close() }()

	pos := int64(headerSize)
	for i, data := range all {
		if _, err := fh.WriteAt(data, pos); err != nil {
			return fmt.Errorf("write slot %d to %s: %w", i, f.path, err)
		}
		f.offsets[i] = uint32(pos)
		f.lengths[i] = uint32(len(data))
		pos += int64(len(data))
	}

	if err := fh.Truncate(pos); err != nil {
		return fmt.Errorf("truncate region %s: %w", f.path, err)
	}

	var hdr [headerSize]byte
	for i := 0; i < entryCount; i++ {
		binary.BigEndian.PutUint32(hdr[i*8:], f.offsets[i])
		binary.BigEndian.PutUint32(hdr[i*8+4:], f.lengths[i])
	}
	if _, err := fh.WriteAt(hdr[:], 0); err != nil {
		return fmt.Errorf("write region header %s: %w", f.path, err)
	}
	return fh.Close()
}

// Stats summarizes a region header for inspection tools.
type Stats struct {
	Live         int
	PayloadBytes int64
}

// HeaderStats counts live slots and payload bytes from the in-memory header.
func (f *File) HeaderStats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	var s Stats
	for i := 0; i < entryCount; i++ {
		if f.offsets[i] != 0 && f.lengths[i] != 0 {
			s.Live++
			s.PayloadBytes += int64(f.lengths[i])
		}
	}
	return s
}
