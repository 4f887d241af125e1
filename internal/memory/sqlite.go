package memory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores memories in a SQLite table, one row per record.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "bluey_memory.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory database: %w", err)
	}

	s := &SQLite{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate memory database: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS memories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);`)
	return err
}

func (s *SQLite) Describe() string { return "sqlite " + s.path }

func (s *SQLite) Load(ctx context.Context) (*Data, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT content, timestamp FROM memories ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := Empty()
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Content, &r.Timestamp); err != nil {
			return nil, err
		}
		data.Memories = append(data.Memories, r)
	}
	return data, rows.Err()
}

// Save replaces every row inside one transaction, keeping record order.
func (s *SQLite) Save(ctx context.Context, data *Data) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM memories`); err != nil {
		return fmt.Errorf("failed to clear memories: %w", err)
	}
	for _, r := range data.normalize().Memories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO memories (content, timestamp) VALUES (?, ?)`, r.Content, r.Timestamp); err != nil {
			return fmt.Errorf("failed to insert memory: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
