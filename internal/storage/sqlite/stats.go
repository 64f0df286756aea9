package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/influence-hub/community-bot/internal/model"
)

type StatsStorage struct {
	db *sql.DB
}

func NewStatsStorage(db *sql.DB) *StatsStorage {
	return &StatsStorage{db: db}
}

func (s *StatsStorage) CollectStats(ctx context.Context) (*model.AdminStats, error) {
	var stats model.AdminStats

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM users`, &stats.TotalUsers},
		{`SELECT COUNT(*) FROM users WHERE is_admin = 1`, &stats.AdminsCount},
		{`SELECT COUNT(*) FROM tasks`, &stats.TasksTotal},
		{`SELECT COUNT(*) FROM tasks WHERE is_published = 1`, &stats.TasksPublished},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("could not collect stats: %w", err)
		}
	}

	assignments, err := NewAssignmentStorage(s.db).CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stats.Assignments = assignments
	return &stats, nil
}
