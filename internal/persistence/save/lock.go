package save

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// generator.lock pins the worldgen seed for an existing save. Changing
// the seed after chunks exist would produce seams at every newly
// generated region, so opens validate against the locked value.

const lockFileName = "generator.lock"

// WriteGeneratorLock stores the seed in the save directory.
func WriteGeneratorLock(saveDir string, seed int64) error {
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(saveDir, lockFileName), []byte(strconv.FormatInt(seed, 10)+"\n"), 0o644)
}

// ReadGeneratorLock returns the locked seed, or ok=false when no valid
// lock file exists.
func ReadGeneratorLock(saveDir string) (seed int64, ok bool) {
	b, err := os.ReadFile(filepath.Join(saveDir, lockFileName))
	if err != nil {
		return 0, false
	}
	seed, err = strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, false
	}
	return seed, true
}

// ValidateGeneratorLock passes when no lock exists or the seeds match.
func ValidateGeneratorLock(saveDir string, seed int64) bool {
	locked, ok := ReadGeneratorLock(saveDir)
	return !ok || locked == seed
}
