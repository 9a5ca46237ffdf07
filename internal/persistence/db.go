// Package persistence provides SQLite-based assembly snapshots.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/polyhex/internal/hex"
	"github.com/talgya/polyhex/internal/polyhex"
)

// ErrNotFound is returned when no snapshot matches a lookup.
var ErrNotFound = errors.New("snapshot not found")

// DB wraps a SQLite connection for assembly persistence.
type DB struct {
	conn *sqlx.DB
}

// AssemblyRecord is the summary row of a saved assembly.
type AssemblyRecord struct {
	ID      string  `db:"id" json:"id"`
	Radius  float64 `db:"radius" json:"radius"`
	Cells   int     `db:"cells" json:"cells"`
	Score   int     `db:"score" json:"score"`
	SavedAt int64   `db:"saved_at" json:"saved_at"`
}

type cellRow struct {
	Seq       int            `db:"seq"`
	Q         int            `db:"q"`
	R         int            `db:"r"`
	Centre    string         `db:"centre"`
	EdgesJSON string         `db:"edges_json"`
	Token     sql.NullString `db:"token"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assemblies (
		id TEXT PRIMARY KEY,
		radius REAL NOT NULL,
		cells INTEGER NOT NULL,
		score INTEGER NOT NULL,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS cells (
		assembly_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		centre TEXT NOT NULL,
		edges_json TEXT NOT NULL,
		token TEXT,
		PRIMARY KEY (assembly_id, seq)
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assemblies_saved ON assemblies(saved_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveAssembly writes a snapshot of a under id (full replace). Cells are
// stored in insertion order so a load replays the same growth.
func (db *DB) SaveAssembly(id uuid.UUID, a *polyhex.Assembly) error {
	slog.Info("saving assembly", "id", id, "cells", a.TotalCells(), "score", a.Score())

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT OR REPLACE INTO assemblies (id, radius, cells, score, saved_at)
		VALUES (?, ?, ?, ?, ?)`,
		id.String(), a.Config().Radius, a.TotalCells(), a.Score(), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert assembly %s: %w", id, err)
	}

	if _, err := tx.Exec("DELETE FROM cells WHERE assembly_id = ?", id.String()); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO cells
		(assembly_id, seq, q, r, centre, edges_json, token)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for seq, c := range a.Cells() {
		edgesJSON, _ := json.Marshal(c.Features())

		var token sql.NullString
		if c.Occupied() {
			token = sql.NullString{String: string(c.Token()), Valid: true}
		}

		_, err := stmt.Exec(
			id.String(), seq, c.Coord().Q, c.Coord().R,
			string(c.Centre()), string(edgesJSON), token,
		)
		if err != nil {
			return fmt.Errorf("insert cell %s: %w", c.Coord(), err)
		}
	}

	return tx.Commit()
}

// LoadAssembly rebuilds the snapshot id by replaying its cells through
// Insert and AddToken, so the border and regions are recomputed rather than
// trusted from disk. The stored radius overrides cfg's.
func (db *DB) LoadAssembly(id uuid.UUID, cfg polyhex.Config) (*polyhex.Assembly, error) {
	var rec AssemblyRecord
	err := db.conn.Get(&rec, "SELECT id, radius, cells, score, saved_at FROM assemblies WHERE id = ?", id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load assembly %s: %w", id, err)
	}

	var rows []cellRow
	err = db.conn.Select(&rows,
		"SELECT seq, q, r, centre, edges_json, token FROM cells WHERE assembly_id = ? ORDER BY seq",
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("load cells %s: %w", id, err)
	}

	cfg.Radius = rec.Radius
	a, err := polyhex.New(cfg)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		var edges []polyhex.Feature
		if err := json.Unmarshal([]byte(row.EdgesJSON), &edges); err != nil {
			return nil, fmt.Errorf("decode cell %d edges: %w", row.Seq, err)
		}
		cell, err := polyhex.NewCell(polyhex.CellSpec{
			Coord:  hex.Coord{Q: row.Q, R: row.R},
			Radius: cfg.Radius,
			Layout: cfg.Layout,
			Centre: polyhex.Feature(row.Centre),
			Edges:  edges,
		})
		if err != nil {
			return nil, fmt.Errorf("restore cell %d: %w", row.Seq, err)
		}
		if err := a.Insert(cell); err != nil {
			return nil, fmt.Errorf("replay cell %d: %w", row.Seq, err)
		}
		if row.Token.Valid {
			if err := a.AddToken(cell.Coord(), polyhex.Token(row.Token.String)); err != nil {
				return nil, fmt.Errorf("replay token on cell %d: %w", row.Seq, err)
			}
		}
	}

	slog.Info("assembly loaded", "id", id, "cells", a.TotalCells(), "score", a.Score())
	return a, nil
}

// LatestAssembly returns the id of the most recently saved snapshot.
func (db *DB) LatestAssembly() (uuid.UUID, error) {
	var raw string
	err := db.conn.Get(&raw, "SELECT id FROM assemblies ORDER BY saved_at DESC LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(raw)
}

// HasAssembly reports whether a snapshot exists under id.
func (db *DB) HasAssembly(id uuid.UUID) bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM assemblies WHERE id = ?", id.String()); err != nil {
		return false
	}
	return count > 0
}

// ListAssemblies returns the most recent N snapshot summaries, newest first.
func (db *DB) ListAssemblies(limit int) ([]AssemblyRecord, error) {
	var records []AssemblyRecord
	err := db.conn.Select(&records,
		"SELECT id, radius, cells, score, saved_at FROM assemblies ORDER BY saved_at DESC LIMIT ?",
		limit,
	)
	return records, err
}

// SaveMeta stores a key-value pair in metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
