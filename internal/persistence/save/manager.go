package save

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"voxelkeep.io/internal/persistence/region"
	"voxelkeep.io/internal/sim/world"
)

// Manager is the save/load coordinator: directory layout, world
// metadata, and region-file chunk persistence.
//
// Layout:
//
//	<save-root>/<world-name>/
//	  world.dat           — metadata (seed, spawn, player)
//	  generator.lock      — pinned worldgen seed
//	  region/
//	    r.<rx>.<rz>.dat   — region files holding chunk payloads
type Manager struct {
	worldName string
	saveDir   string
	regionDir string

	mu      sync.Mutex
	regions map[regionKey]*region.File
}

type regionKey struct {
	rx int
	rz int
}

func NewManager(saveRoot, worldName string) *Manager {
	saveDir := filepath.Join(saveRoot, worldName)
	return &Manager{
		worldName: worldName,
		saveDir:   saveDir,
		regionDir: filepath.Join(saveDir, "region"),
		regions:   map[regionKey]*region.File{},
	}
}

func (m *Manager) WorldName() string { return m.worldName }
func (m *Manager) SaveDir() string   { return m.saveDir }
func (m *Manager) RegionDir() string { return m.regionDir }

// WorldExists reports whether this world has been created on disk.
func (m *Manager) WorldExists() bool {
	return MetaExists(m.saveDir)
}

func (m *Manager) LoadMeta() (WorldMeta, error) {
	return LoadMeta(m.saveDir)
}

func (m *Manager) SaveMeta(meta WorldMeta) error {
	return meta.SaveMeta(m.saveDir)
}

// SaveChunk encodes and writes one chunk through its region file,
// clearing the modified flag only after the write succeeds.
func (m *Manager) SaveChunk(c *world.Chunk) error {
	data, err := EncodeChunk(c)
	if err != nil {
		return fmt.Errorf("encode chunk %s: %w", c.Pos(), err)
	}
	rf := m.getOrCreateRegion(c.Pos().X, c.Pos().Z)
	if err := rf.WriteChunkData(c.Pos().X, c.Pos().Z, data); err != nil {
		return err
	}
	c.SetModified(false)
	return nil
}

// SaveModifiedChunks persists every chunk with the modified flag set,
// batching by region so each region file is rewritten once. A failed
// chunk or region is logged and skipped; the batch always continues.
// Returns the number of chunks actually saved.
func (m *Manager) SaveModifiedChunks(chunks []*world.Chunk) int {
	var modified []*world.Chunk
	for _, c := range chunks {
		if c.Modified() {
			modified = append(modified, c)
		}
	}
	return m.saveBatch(modified)
}

// SaveAllChunks persists every loaded chunk regardless of the modified
// flag. Used at shutdown. Returns the number of chunks saved.
func (m *Manager) SaveAllChunks(chunks []*world.Chunk) int {
	return m.saveBatch(chunks)
}

func (m *Manager) saveBatch(chunks []*world.Chunk) int {
	byRegion := map[regionKey][]*world.Chunk{}
	for _, c := range chunks {
		k := regionKey{rx: region.ToRegion(c.Pos().X), rz: region.ToRegion(c.Pos().Z)}
		byRegion[k] = append(byRegion[k], c)
	}

	saved := 0
	for k, group := range byRegion {
		batch := make([]region.ChunkData, 0, len(group))
		encoded := make([]*world.Chunk, 0, len(group))
		for _, c := range group {
			data, err := EncodeChunk(c)
			if err != nil {
				log.Printf("save: encode chunk %s failed: %v", c.Pos(), err)
				continue
			}
			batch = append(batch, region.ChunkData{CX: c.Pos().X, CZ: c.Pos().Z, Data: data})
			encoded = append(encoded, c)
		}
		if len(batch) == 0 {
			continue
		}

		rf := m.getOrCreateRegion(k.rx*region.Size, k.rz*region.Size)
		if err := rf.WriteChunks(batch); err != nil {
			log.Printf("save: region (%d,%d) write failed, %d chunks skipped: %v", k.rx, k.rz, len(batch), err)
			continue
		}
		for _, c := range encoded {
			c.SetModified(false)
		}
		saved += len(batch)
	}
	return saved
}

// LoadChunk reads and decodes a chunk from disk. Absence and failure
// both collapse to nil for the caller: failures are logged here, but the
// consumer contract is simply "not found". Callers that need the
// distinction must go through the region layer.
func (m *Manager) LoadChunk(cx, cz int) *world.Chunk {
	rf := m.getOrCreateRegion(cx, cz)
	if !rf.HasChunk(cx, cz) {
		return nil
	}
	data, err := rf.ReadChunkData(cx, cz)
	if err != nil {
		log.Printf("save: load chunk (%d,%d) failed: %v", cx, cz, err)
		return nil
	}
	if data == nil {
		return nil
	}
	c, err := DecodeChunk(data)
	if err != nil {
		log.Printf("save: decode chunk (%d,%d) failed: %v", cx, cz, err)
		return nil
	}
	return c
}

// HasChunk reports whether a chunk exists on disk. I/O failure collapses
// to false, same contract as LoadChunk.
func (m *Manager) HasChunk(cx, cz int) bool {
	return m.getOrCreateRegion(cx, cz).HasChunk(cx, cz)
}

// getOrCreateRegion returns the cached region file for the chunk
// coordinate, creating and header-loading it on first touch. A header
// load failure degrades to an empty region rather than failing the
// caller.
func (m *Manager) getOrCreateRegion(cx, cz int) *region.File {
	k := regionKey{rx: region.ToRegion(cx), rz: region.ToRegion(cz)}

	m.mu.Lock()
	defer m.mu.Unlock()
	if rf, ok := m.regions[k]; ok {
		return rf
	}
	rf := region.NewFile(m.regionDir, k.rx, k.rz)
	if err := rf.LoadHeader(); err != nil {
		log.Printf("save: region (%d,%d) header load failed, starting empty: %v", k.rx, k.rz, err)
	}
	m.regions[k] = rf
	return rf
}

// OpenRegions returns the currently cached region files (diagnostics).
func (m *Manager) OpenRegions() []*region.File {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*region.File, 0, len(m.regions))
	for _, rf := range m.regions {
		out = append(out, rf)
	}
	return out
}

// Close drops the region cache. No flush happens here: callers must have
// saved what they need first.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regions = map[regionKey]*region.File{}
}
