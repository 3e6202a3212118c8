package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"voxelkeep.io/internal/config"
	"voxelkeep.io/internal/persistence/indexdb"
	"voxelkeep.io/internal/persistence/save"
	"voxelkeep.io/internal/persistence/savelog"
	"voxelkeep.io/internal/sim/gen"
	"voxelkeep.io/internal/sim/stream"
	"voxelkeep.io/internal/sim/world"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml (empty = defaults)")
		worldName  = flag.String("world", "", "world name (overrides config)")
		seed       = flag.Int64("seed", 0, "world seed, used only when creating a fresh world (overrides config)")
		saveRoot   = flag.String("save_root", "", "save root directory (overrides config)")
		workers    = flag.Int("workers", 0, "generation worker count (overrides config)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if strings.TrimSpace(*worldName) != "" {
		cfg.WorldName = *worldName
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if strings.TrimSpace(*saveRoot) != "" {
		cfg.SaveRoot = *saveRoot
	}
	if *workers > 0 {
		cfg.GenWorkers = *workers
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	mgr := save.NewManager(cfg.SaveRoot, cfg.WorldName)
	defer mgr.Close()

	var idx *indexdb.SQLiteIndex
	if cfg.IndexDB {
		var err error
		idx, err = indexdb.OpenSQLite(cfg.IndexDBPath())
		if err != nil {
			logger.Printf("index db unavailable, continuing without: %v", err)
		} else {
			defer idx.Close()
		}
	}

	meta, fresh, err := openOrCreateWorld(mgr, cfg, logger)
	if err != nil {
		return err
	}
	logger.Printf("world %q seed=%d spawn=%v (fresh=%v)", meta.Name, meta.Seed, meta.Spawn, fresh)

	if idx != nil {
		idx.RecordWorld(indexdb.WorldRow{
			Name:         meta.Name,
			Seed:         meta.Seed,
			CreatedAt:    meta.CreatedAt,
			LastOpenedAt: savelog.Now(),
		})
	}

	events := savelog.NewEventLogger(mgr.SaveDir())
	defer events.Close()

	pool := stream.NewPool(cfg.GenWorkers, cfg.GenQueueCapacity, cfg.GenPollInterval(), func() stream.Generator {
		return gen.Default(meta.Seed)
	})

	w := world.New()

	playerChunk := world.ChunkPosAt(int(meta.Player.Pos[0]), int(meta.Player.Pos[2]))
	requestAround(w, mgr, pool, playerChunk, cfg.ViewRadiusChunks)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.TickRateHz))
	defer ticker.Stop()

	var tick uint64
	logger.Printf("running: %d workers, autosave every %d ticks", cfg.GenWorkers, cfg.AutosaveEveryTicks)

	for {
		select {
		case <-ctx.Done():
			return shutdown(w, mgr, meta, pool, events, idx, tick, logger)
		case <-ticker.C:
		}
		tick++

		// Integrate finished generation results.
		for _, t := range pool.Drain() {
			c := t.Result()
			w.PutChunk(c)
			// Fresh terrain must reach disk even without gameplay mutation.
			c.SetModified(true)
			_ = events.WriteGen(savelog.GenEvent{At: savelog.Now(), Tick: tick, CX: c.Pos().X, CZ: c.Pos().Z})
		}

		// Keep the view radius resident. The player is stationary in this
		// headless loop; a driving client would move this anchor.
		requestAround(w, mgr, pool, playerChunk, cfg.ViewRadiusChunks)

		if tick%uint64(cfg.AutosaveEveryTicks) == 0 {
			start := time.Now()
			n := mgr.SaveModifiedChunks(w.LoadedChunks())
			if n > 0 {
				logger.Printf("autosave: %d chunks in %s", n, time.Since(start).Round(time.Millisecond))
			}
			recordSave(events, idx, meta.Name, tick, "autosave", n, time.Since(start))
			if err := mgr.SaveMeta(meta); err != nil {
				logger.Printf("autosave: meta write failed: %v", err)
			}
		}
	}
}

// openOrCreateWorld loads an existing world's metadata or creates a new
// save: spawn point from the generator, metadata, and the seed lock.
func openOrCreateWorld(mgr *save.Manager, cfg config.Config, logger *log.Logger) (save.WorldMeta, bool, error) {
	if mgr.WorldExists() {
		meta, err := mgr.LoadMeta()
		if err != nil {
			return save.WorldMeta{}, false, err
		}
		if !save.ValidateGeneratorLock(mgr.SaveDir(), meta.Seed) {
			locked, _ := save.ReadGeneratorLock(mgr.SaveDir())
			logger.Printf("generator lock seed %d differs from world.dat seed %d; using locked seed", locked, meta.Seed)
			meta.Seed = locked
		}
		return meta, false, nil
	}

	genCtx := gen.NewContext(cfg.Seed, gen.DefaultConfig())
	sx, sy, sz := gen.FindSpawn(genCtx)
	meta := save.NewWorldMeta(cfg.WorldName, cfg.Seed, [3]int{sx, sy, sz})
	if err := mgr.SaveMeta(meta); err != nil {
		return meta, true, err
	}
	if err := save.WriteGeneratorLock(mgr.SaveDir(), cfg.Seed); err != nil {
		return meta, true, err
	}
	return meta, true, nil
}

// requestAround loads from disk or submits generation for every chunk in
// the square view radius around center that is not yet resident.
func requestAround(w *world.World, mgr *save.Manager, pool *stream.Pool, center world.ChunkPos, radius int) {
	for dz := -radius; dz <= radius; dz++ {
		for dx := -radius; dx <= radius; dx++ {
			pos := world.ChunkPos{X: center.X + dx, Z: center.Z + dz}
			if !w.MarkPending(pos) {
				continue
			}
			if c := mgr.LoadChunk(pos.X, pos.Z); c != nil {
				w.PutChunk(c)
				continue
			}
			pool.Submit(pos)
		}
	}
}

func shutdown(w *world.World, mgr *save.Manager, meta save.WorldMeta, pool *stream.Pool, events *savelog.EventLogger, idx *indexdb.SQLiteIndex, tick uint64, logger *log.Logger) error {
	logger.Printf("shutting down")
	pool.Stop()

	// Workers are stopped; anything already completed still counts.
	for _, t := range pool.Drain() {
		c := t.Result()
		c.SetModified(true)
		w.PutChunk(c)
	}

	start := time.Now()
	n := mgr.SaveAllChunks(w.LoadedChunks())
	logger.Printf("shutdown save: %d chunks in %s", n, time.Since(start).Round(time.Millisecond))
	recordSave(events, idx, meta.Name, tick, "shutdown", n, time.Since(start))

	if err := mgr.SaveMeta(meta); err != nil {
		logger.Printf("shutdown: meta write failed: %v", err)
	}
	return nil
}

func recordSave(events *savelog.EventLogger, idx *indexdb.SQLiteIndex, worldName string, tick uint64, kind string, chunks int, d time.Duration) {
	_ = events.WriteSave(savelog.SaveEvent{
		At:         savelog.Now(),
		Tick:       tick,
		Kind:       kind,
		Chunks:     chunks,
		DurationMS: d.Milliseconds(),
	})
	if idx != nil {
		idx.RecordSaveRun(indexdb.SaveRunRow{
			World:      worldName,
			Tick:       tick,
			Kind:       kind,
			Chunks:     chunks,
			DurationMS: d.Milliseconds(),
			RecordedAt: savelog.Now(),
		})
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
