package model

import "context"

// AdminStats is the snapshot shown in the admin panel.
type AdminStats struct {
	TotalUsers     int
	AdminsCount    int
	TasksTotal     int
	TasksPublished int
	Assignments    StatusCounts
}

type StatsRepository interface {
	CollectStats(ctx context.Context) (*AdminStats, error)
}
