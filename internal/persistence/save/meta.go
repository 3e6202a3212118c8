package save

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CurrentFormatVersion is the save format written by this build.
const CurrentFormatVersion = 1

// IsCompatible reports whether a save format version can be loaded.
func IsCompatible(v int) bool {
	return v >= 1 && v <= CurrentFormatVersion
}

const metaFileName = "world.dat"

// WorldMeta is the per-world metadata record stored in world.dat.
// The on-disk form is JSON (see schemas/world_meta.schema.json).
type WorldMeta struct {
	FormatVersion int    `json:"format_version"`
	Name          string `json:"name"`
	Seed          int64  `json:"seed"`

	Spawn  [3]int      `json:"spawn"`
	Player PlayerState `json:"player"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type PlayerState struct {
	Pos   [3]float64 `json:"pos"`
	Yaw   float64    `json:"yaw"`
	Pitch float64    `json:"pitch"`
}

// NewWorldMeta stamps a fresh metadata record with the spawn as the
// initial player position.
func NewWorldMeta(name string, seed int64, spawn [3]int) WorldMeta {
	return WorldMeta{
		FormatVersion: CurrentFormatVersion,
		Name:          name,
		Seed:          seed,
		Spawn:         spawn,
		Player: PlayerState{
			Pos: [3]float64{float64(spawn[0]) + 0.5, float64(spawn[1]) + 1, float64(spawn[2]) + 0.5},
		},
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// MetaExists reports whether saveDir holds a world.dat.
func MetaExists(saveDir string) bool {
	_, err := os.Stat(filepath.Join(saveDir, metaFileName))
	return err == nil
}

// LoadMeta reads and version-gates world.dat.
func LoadMeta(saveDir string) (WorldMeta, error) {
	var m WorldMeta
	b, err := os.ReadFile(filepath.Join(saveDir, metaFileName))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("world.dat: %w", err)
	}
	if !IsCompatible(m.FormatVersion) {
		return m, fmt.Errorf("world.dat: unsupported format version %d", m.FormatVersion)
	}
	return m, nil
}

// SaveMeta writes world.dat, refreshing the updated timestamp.
func (m WorldMeta) SaveMeta(saveDir string) error {
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return err
	}
	m.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(saveDir, metaFileName), b, 0o644)
}
