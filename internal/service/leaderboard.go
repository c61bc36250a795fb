package service

import (
	"context"
	"errors"
	"fmt"

	"bountyhunter/internal/model"
	"bountyhunter/internal/repository"
)

const (
	DefaultLeaderboardLimit = 100
	MaxLeaderboardLimit     = 500
)

type LeaderboardService struct {
	repo  LeaderboardRepository
	cache LeaderboardCacheI
}

func NewLeaderboardService(repo LeaderboardRepository, cache LeaderboardCacheI) *LeaderboardService {
	return &LeaderboardService{
		repo:  repo,
		cache: cache,
	}
}

func (s *LeaderboardService) GetLeaderboard(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, limit)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	entries, err := s.repo.GetTopUsers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, limit, entries); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (s *LeaderboardService) GetUserRank(ctx context.Context, userID int64) (*model.UserRank, error) {
	rank, err := s.repo.GetUserRank(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user rank: %w", err)
	}
	return rank, nil
}

func (s *LeaderboardService) GetProgramStats(ctx context.Context) (*model.ProgramStats, error) {
	stats, err := s.repo.GetProgramStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get program stats: %w", err)
	}
	return stats, nil
}
