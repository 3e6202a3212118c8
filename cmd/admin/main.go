package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"voxelkeep.io/internal/persistence/indexdb"
	"voxelkeep.io/internal/persistence/region"
	"voxelkeep.io/internal/persistence/save"
)

const usage = `usage: admin [-save_root DIR] <command> [args]

commands:
  worlds                     list worlds from the index db
  saves <world> [limit]      recent save runs for a world
  meta <world>               print world.dat
  region <world> <rx> <rz>   region file header stats
`

func main() {
	var (
		saveRoot = flag.String("save_root", defaultSaveRoot(), "save root directory")
	)
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	logger := log.New(os.Stderr, "[admin] ", 0)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "worlds":
		err = cmdWorlds(*saveRoot)
	case "saves":
		if len(args) < 2 {
			flag.Usage()
			os.Exit(2)
		}
		limit := 20
		if len(args) >= 3 {
			limit, _ = strconv.Atoi(args[2])
		}
		err = cmdSaves(*saveRoot, args[1], limit)
	case "meta":
		if len(args) < 2 {
			flag.Usage()
			os.Exit(2)
		}
		err = cmdMeta(*saveRoot, args[1])
	case "region":
		if len(args) < 4 {
			flag.Usage()
			os.Exit(2)
		}
		rx, err1 := strconv.Atoi(args[2])
		rz, err2 := strconv.Atoi(args[3])
		if err1 != nil || err2 != nil {
			flag.Usage()
			os.Exit(2)
		}
		err = cmdRegion(*saveRoot, args[1], rx, rz)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Fatalf("%v", err)
	}
}

func defaultSaveRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".voxelkeep", "saves")
}

func cmdWorlds(saveRoot string) error {
	idx, err := indexdb.OpenSQLite(filepath.Join(saveRoot, "index.db"))
	if err != nil {
		return err
	}
	defer idx.Close()

	worlds, err := idx.ListWorlds(context.Background())
	if err != nil {
		return err
	}
	if len(worlds) == 0 {
		fmt.Println("no worlds indexed")
		return nil
	}
	for _, w := range worlds {
		fmt.Printf("%-24s seed=%-12d created=%s last_opened=%s\n", w.Name, w.Seed, w.CreatedAt, w.LastOpenedAt)
	}
	return nil
}

func cmdSaves(saveRoot, worldName string, limit int) error {
	idx, err := indexdb.OpenSQLite(filepath.Join(saveRoot, "index.db"))
	if err != nil {
		return err
	}
	defer idx.Close()

	runs, err := idx.ListSaveRuns(context.Background(), worldName, limit)
	if err != nil {
		return err
	}
	for _, r := range runs {
		fmt.Printf("tick=%-10d %-9s chunks=%-6d %5dms %s\n", r.Tick, r.Kind, r.Chunks, r.DurationMS, r.RecordedAt)
	}
	return nil
}

func cmdMeta(saveRoot, worldName string) error {
	meta, err := save.LoadMeta(filepath.Join(saveRoot, worldName))
	if err != nil {
		return err
	}
	fmt.Printf("name:           %s\n", meta.Name)
	fmt.Printf("format_version: %d\n", meta.FormatVersion)
	fmt.Printf("seed:           %d\n", meta.Seed)
	fmt.Printf("spawn:          %v\n", meta.Spawn)
	fmt.Printf("player:         pos=%v yaw=%.1f pitch=%.1f\n", meta.Player.Pos, meta.Player.Yaw, meta.Player.Pitch)
	fmt.Printf("created_at:     %s\n", meta.CreatedAt)
	fmt.Printf("updated_at:     %s\n", meta.UpdatedAt)
	return nil
}

func cmdRegion(saveRoot, worldName string, rx, rz int) error {
	rf := region.NewFile(filepath.Join(saveRoot, worldName, "region"), rx, rz)
	if err := rf.LoadHeader(); err != nil {
		return err
	}
	st, err := os.Stat(rf.Path())
	if os.IsNotExist(err) {
		fmt.Printf("region (%d,%d): no file\n", rx, rz)
		return nil
	}
	if err != nil {
		return err
	}
	stats := rf.HeaderStats()
	fmt.Printf("region (%d,%d): %s\n", rx, rz, rf.Path())
	fmt.Printf("  live chunks:   %d / %d\n", stats.Live, region.Size*region.Size)
	fmt.Printf("  payload bytes: %d\n", stats.PayloadBytes)
	fmt.Printf("  file size:     %d\n", st.Size())
	return nil
}
