package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string          `json:"db_path"`
	DBSizeBytes   int64           `json:"db_size_bytes"`
	TotalMemories int             `json:"total_memories"`
	Categories    []CategoryStats `json:"categories"`
	Sources       int             `json:"sources"`
}

// CategoryStats holds per-category counts.
type CategoryStats struct {
	Category      string  `json:"category"`
	Count         int     `json:"count"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// Stats returns database statistics.
func (s *SQLite) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&st.TotalMemories)
	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT source) FROM memories`).Scan(&st.Sources)

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) AS cnt, AVG(confidence) AS conf
		FROM memories GROUP BY category ORDER BY cnt DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var cs CategoryStats
		rows.Scan(&cs.Category, &cs.Count, &cs.AvgConfidence)
		st.Categories = append(st.Categories, cs)
	}

	return st, rows.Err()
}
