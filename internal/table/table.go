package table

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"backlogtimer/internal/backlog"
)

// Table is the SQLite-backed backlog snapshot.
type Table struct {
	db   *sql.DB
	path string
}

// Exists reports whether a snapshot file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Open creates or opens the snapshot at path.
func Open(ctx context.Context, path string) (*Table, error) {
	if path == "" {
		return nil, errors.New("table path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create table directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; the pipeline only saves at batch boundaries.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	t := &Table{db: db, path: path}
	if err := t.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return t, nil
}

// Close closes the database.
func (t *Table) Close() error {
	if t == nil || t.db == nil {
		return nil
	}
	return t.db.Close()
}

// Path returns the snapshot file path.
func (t *Table) Path() string {
	return t.path
}

// Save replaces the snapshot with items in a single transaction.
func (t *Table) Save(ctx context.Context, username string, items []backlog.Item) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM games"); err != nil {
		return fmt.Errorf("clear games: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO games (
            position, title, system, achievements, points, ra_id,
            hltb_beat, hltb_complete, ra_beat, ra_master, ra_players,
            points_per_hour, comment
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for idx, item := range items {
		if _, err := stmt.ExecContext(ctx,
			idx,
			item.Title,
			item.System,
			item.Achievements,
			item.Points,
			item.RAID,
			nullableFloat(item.HLTBBeat),
			nullableFloat(item.HLTBComplete),
			nullableFloat(item.RABeat),
			nullableFloat(item.RAMaster),
			nullableInt(item.RAPlayers),
			nullableFloat(item.PointsPerHour),
			item.Comment,
		); err != nil {
			return fmt.Errorf("insert %q: %w", item.Key(), err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot (id, username, updated_at) VALUES (1, ?, ?)
         ON CONFLICT(id) DO UPDATE SET username = excluded.username, updated_at = excluded.updated_at`,
		username, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load returns the snapshot rows in backlog order.
func (t *Table) Load(ctx context.Context) ([]backlog.Item, error) {
	rows, err := t.db.QueryContext(ctx, `SELECT
            title, system, achievements, points, ra_id,
            hltb_beat, hltb_complete, ra_beat, ra_master, ra_players,
            points_per_hour, comment
        FROM games ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var items []backlog.Item
	for rows.Next() {
		var (
			item                                      backlog.Item
			beat, complete, raBeat, raMaster, perHour sql.NullFloat64
			players                                   sql.NullInt64
		)
		if err := rows.Scan(
			&item.Title, &item.System, &item.Achievements, &item.Points, &item.RAID,
			&beat, &complete, &raBeat, &raMaster, &players,
			&perHour, &item.Comment,
		); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		item.HLTBBeat = floatPtr(beat)
		item.HLTBComplete = floatPtr(complete)
		item.RABeat = floatPtr(raBeat)
		item.RAMaster = floatPtr(raMaster)
		item.PointsPerHour = floatPtr(perHour)
		if players.Valid {
			item.RAPlayers = backlog.Int(int(players.Int64))
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return items, nil
}

// Info describes the stored snapshot.
type Info struct {
	Username  string
	UpdatedAt time.Time
	Rows      int
}

// Info returns snapshot metadata. ok is false when nothing has been saved.
func (t *Table) Info(ctx context.Context) (Info, bool, error) {
	var (
		info    Info
		updated string
	)
	err := t.db.QueryRowContext(ctx, "SELECT username, updated_at FROM snapshot WHERE id = 1").Scan(&info.Username, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, false, nil
	}
	if err != nil {
		return Info{}, false, fmt.Errorf("read snapshot info: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339Nano, updated); parseErr == nil {
		info.UpdatedAt = ts
	}
	if err := t.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM games").Scan(&info.Rows); err != nil {
		return Info{}, false, fmt.Errorf("count games: %w", err)
	}
	return info, true, nil
}

// Remove deletes the snapshot file and its WAL side files.
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return backlog.Float(v.Float64)
}

// DB exposes the underlying handle for maintenance commands and tests.
func (t *Table) DB() *sql.DB {
	return t.db
}
