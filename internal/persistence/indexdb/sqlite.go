package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// SQLiteIndex is the cross-world index at <save-root>/index.db: which
// worlds exist and a history of save batches. A secondary index only —
// the region files remain the source of truth.
//
// Writes go through a single writer goroutine so the tick loop never
// blocks on SQLite.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqWorld reqKind = iota + 1
	reqSaveRun
)

type req struct {
	kind reqKind

	world WorldRow
	run   SaveRunRow
}

// WorldRow describes one known world.
type WorldRow struct {
	Name         string
	Seed         int64
	CreatedAt    string
	LastOpenedAt string
}

// SaveRunRow describes one persisted save batch.
type SaveRunRow struct {
	World      string
	Tick       uint64
	Kind       string // "autosave" | "shutdown"
	Chunks     int
	DurationMS int64
	RecordedAt string
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS worlds (
			name TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			created_at TEXT NOT NULL,
			last_opened_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS save_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			world TEXT NOT NULL,
			tick INTEGER NOT NULL,
			kind TEXT NOT NULL,
			chunks INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_save_runs_world_tick ON save_runs(world, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		var err error
		switch r.kind {
		case reqWorld:
			_, err = s.db.Exec(
				`INSERT INTO worlds (name, seed, created_at, last_opened_at)
				 VALUES (?, ?, ?, ?)
				 ON CONFLICT(name) DO UPDATE SET last_opened_at = excluded.last_opened_at`,
				r.world.Name, r.world.Seed, r.world.CreatedAt, r.world.LastOpenedAt)
		case reqSaveRun:
			_, err = s.db.Exec(
				`INSERT INTO save_runs (world, tick, kind, chunks, duration_ms, recorded_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				r.run.World, r.run.Tick, r.run.Kind, r.run.Chunks, r.run.DurationMS, r.run.RecordedAt)
		}
		if err != nil {
			log.Printf("indexdb: write failed: %v", err)
		}
	}
}

// RecordWorld upserts a world row. Non-blocking: when the writer queue
// is full the record is dropped with a warning.
func (s *SQLiteIndex) RecordWorld(row WorldRow) {
	s.send(req{kind: reqWorld, world: row})
}

// RecordSaveRun appends a save batch record.
func (s *SQLiteIndex) RecordSaveRun(row SaveRunRow) {
	s.send(req{kind: reqSaveRun, run: row})
}

func (s *SQLiteIndex) send(r req) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		log.Printf("indexdb: writer queue full, dropping record")
	}
}

// ListWorlds returns every known world ordered by name.
func (s *SQLiteIndex) ListWorlds(ctx context.Context) ([]WorldRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, seed, created_at, last_opened_at FROM worlds ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WorldRow
	for rows.Next() {
		var w WorldRow
		if err := rows.Scan(&w.Name, &w.Seed, &w.CreatedAt, &w.LastOpenedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// ListSaveRuns returns the most recent save batches for a world, newest
// first.
func (s *SQLiteIndex) ListSaveRuns(ctx context.Context, worldName string, limit int) ([]SaveRunRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT world, tick, kind, chunks, duration_ms, recorded_at
		 FROM save_runs WHERE world = ? ORDER BY id DESC LIMIT ?`, worldName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SaveRunRow
	for rows.Next() {
		var r SaveRunRow
		if err := rows.Scan(&r.World, &r.Tick, &r.Kind, &r.Chunks, &r.DurationMS, &r.RecordedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close drains pending writes and closes the database.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
