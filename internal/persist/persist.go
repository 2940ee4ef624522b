// Package persist caches session state between runs: the pane tree
// snapshot plus each file-backed buffer's id, path, and cursors. The
// store is advisory; every reader degrades to an empty result rather
// than failing the editor.
package persist

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/dmorey/caret/internal/engine/id"
)

const schema = `
CREATE TABLE IF NOT EXISTS pane_tree (
	rowid INTEGER PRIMARY KEY CHECK (rowid = 1),
	snapshot TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS buffers (
	buffer_id TEXT PRIMARY KEY,
	path TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cursors (
	buffer_id TEXT NOT NULL,
	pane_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (buffer_id, pane_id)
);
`

// BufferRecord is the persisted state of one buffer.
type BufferRecord struct {
	ID      id.Buffer
	Path    string
	Cursors map[id.Pane]int
}

// Store is a session cache on disk.
type Store struct {
	db *sql.DB
}

// Open opens or creates the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session store schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored session with the given snapshot and buffer
// records, atomically.
func (s *Store) Save(treeSnapshot []byte, buffers []BufferRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin session save: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM pane_tree",
		"DELETE FROM buffers",
		"DELETE FROM cursors",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clear session store: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT INTO pane_tree (rowid, snapshot) VALUES (1, ?)",
		string(treeSnapshot),
	); err != nil {
		return fmt.Errorf("save pane tree: %w", err)
	}

	for _, rec := range buffers {
		if _, err := tx.Exec(
			"INSERT INTO buffers (buffer_id, path) VALUES (?, ?)",
			string(rec.ID), rec.Path,
		); err != nil {
			return fmt.Errorf("save buffer %s: %w", rec.ID, err)
		}
		for paneID, pos := range rec.Cursors {
			if _, err := tx.Exec(
				"INSERT INTO cursors (buffer_id, pane_id, position) VALUES (?, ?, ?)",
				string(rec.ID), string(paneID), pos,
			); err != nil {
				return fmt.Errorf("save cursor for buffer %s: %w", rec.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session save: %w", err)
	}
	return nil
}

// Load returns the stored pane tree snapshot and buffer records. A
// fresh store yields a nil snapshot and no records, not an error.
func (s *Store) Load() ([]byte, []BufferRecord, error) {
	var snapshot string
	err := s.db.QueryRow("SELECT snapshot FROM pane_tree WHERE rowid = 1").Scan(&snapshot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load pane tree: %w", err)
	}

	rows, err := s.db.Query("SELECT buffer_id, path FROM buffers")
	if err != nil {
		return nil, nil, fmt.Errorf("load buffers: %w", err)
	}
	defer rows.Close()

	var records []BufferRecord
	for rows.Next() {
		var rec BufferRecord
		var bufID string
		if err := rows.Scan(&bufID, &rec.Path); err != nil {
			return nil, nil, fmt.Errorf("scan buffer row: %w", err)
		}
		rec.ID = id.Buffer(bufID)
		rec.Cursors = make(map[id.Pane]int)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read buffer rows: %w", err)
	}

	for i := range records {
		if err := s.loadCursors(&records[i]); err != nil {
			return nil, nil, err
		}
	}
	return []byte(snapshot), records, nil
}

func (s *Store) loadCursors(rec *BufferRecord) error {
	rows, err := s.db.Query(
		"SELECT pane_id, position FROM cursors WHERE buffer_id = ?",
		string(rec.ID),
	)
	if err != nil {
		return fmt.Errorf("load cursors for buffer %s: %w", rec.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var paneID string
		var pos int
		if err := rows.Scan(&paneID, &pos); err != nil {
			return fmt.Errorf("scan cursor row: %w", err)
		}
		rec.Cursors[id.Pane(paneID)] = pos
	}
	return rows.Err()
}
