package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/rcliao/chat-memory/internal/model"
)

// SQLite implements Backend using an embedded SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens or creates a SQLite database at the given path.
func NewSQLite(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id           TEXT PRIMARY KEY,
		content      TEXT NOT NULL,
		category     TEXT NOT NULL,
		source       TEXT NOT NULL,
		source_title TEXT,
		confidence   REAL NOT NULL,
		created_at   TEXT NOT NULL,
		raw_match    TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memories_category ON memories(category);
	CREATE INDEX IF NOT EXISTS idx_memories_confidence ON memories(confidence);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_memories_source ON memories(source);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) Put(ctx context.Context, m model.Memory) error {
	var sourceTitle, rawMatch *string
	if m.SourceTitle != "" {
		sourceTitle = &m.SourceTitle
	}
	if m.RawMatch != "" {
		rawMatch = &m.RawMatch
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (id, content, category, source, source_title, confidence, created_at, raw_match)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   content = excluded.content,
		   category = excluded.category,
		   source = excluded.source,
		   source_title = excluded.source_title,
		   confidence = excluded.confidence,
		   created_at = excluded.created_at,
		   raw_match = excluded.raw_match`,
		m.ID, m.Content, string(m.Category), m.Source, sourceTitle,
		m.Confidence, m.CreatedAt.UTC().Format(time.RFC3339Nano), rawMatch)
	if err != nil {
		return fmt.Errorf("insert memory: %w", err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return nil
}

func (s *SQLite) GetAll(ctx context.Context) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, category, source, source_title, confidence, created_at, raw_match
		 FROM memories ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var category, createdAt string
	var sourceTitle, rawMatch sql.NullString

	err := row.Scan(&m.ID, &m.Content, &category, &m.Source, &sourceTitle,
		&m.Confidence, &createdAt, &rawMatch)
	if err != nil {
		return m, err
	}

	m.Category = model.Category(category)
	m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if sourceTitle.Valid {
		m.SourceTitle = sourceTitle.String
	}
	if rawMatch.Valid {
		m.RawMatch = rawMatch.String
	}

	return m, nil
}
