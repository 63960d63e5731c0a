package store

import (
	"context"
	"strings"

	"github.com/rcliao/chat-memory/internal/model"
)

// SearchParams holds parameters for searching memories.
type SearchParams struct {
	Query    string
	Category model.Category
	Limit    int
}

// Search finds memories whose content or raw match contains the query
// substring, case-insensitively, newest first.
func (s *SQLite) Search(ctx context.Context, p SearchParams) ([]model.Memory, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"(content LIKE ? COLLATE NOCASE OR raw_match LIKE ? COLLATE NOCASE)"}
	pattern := "%" + p.Query + "%"
	args := []interface{}{pattern, pattern}

	if p.Category != "" {
		where = append(where, "category = ?")
		args = append(args, string(p.Category))
	}

	query := `SELECT id, content, category, source, source_title, confidence, created_at, raw_match
	          FROM memories WHERE ` + strings.Join(where, " AND ") + `
	          ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
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
