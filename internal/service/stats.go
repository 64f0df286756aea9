package service

import (
	"context"

	"github.com/influence-hub/community-bot/internal/model"
)

type StatsService struct {
	stats model.StatsRepository
}

func NewStatsService(stats model.StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

func (s *StatsService) Collect(ctx context.Context) (*model.AdminStats, error) {
	return s.stats.CollectStats(ctx)
}
