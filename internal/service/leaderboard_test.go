package service

import (
	"context"
	"testing"

	"bountyhunter/internal/model"
	"bountyhunter/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestLeaderboardService_GetLeaderboard(t *testing.T) {
	entries := []*model.LeaderboardEntry{
		{Rank: 1, Username: "top_hunter", Points: 900, Referrals: 3},
		{Rank: 2, Username: "runner_up", Points: 450},
	}

	t.Run("Cache hit skips the database", func(t *testing.T) {
		repo := &mocks.MockLeaderboardRepository{}
		cache := &mocks.MockLeaderboardCache{}
		cache.On("Get", mock.Anything, DefaultLeaderboardLimit).Return(entries, nil)

		svc := NewLeaderboardService(repo, cache)
		got, err := svc.GetLeaderboard(context.Background(), 0)

		assert.NoError(t, err)
		assert.Equal(t, entries, got)
		repo.AssertNotCalled(t, "GetTopUsers", mock.Anything, mock.Anything)
	})

	t.Run("Cache miss falls through and repopulates", func(t *testing.T) {
		repo := &mocks.MockLeaderboardRepository{}
		cache := &mocks.MockLeaderboardCache{}
		cache.On("Get", mock.Anything, DefaultLeaderboardLimit).Return(nil, nil)
		repo.On("GetTopUsers", mock.Anything, DefaultLeaderboardLimit).Return(entries, nil)
		cache.On("Set", mock.Anything, DefaultLeaderboardLimit, entries).Return(nil)

		svc := NewLeaderboardService(repo, cache)
		got, err := svc.GetLeaderboard(context.Background(), 0)

		assert.NoError(t, err)
		assert.Equal(t, entries, got)
		cache.AssertExpectations(t)
	})

	t.Run("Limit is capped", func(t *testing.T) {
		repo := &mocks.MockLeaderboardRepository{}
		cache := &mocks.MockLeaderboardCache{}
		cache.On("Get", mock.Anything, MaxLeaderboardLimit).Return(nil, nil)
		repo.On("GetTopUsers", mock.Anything, MaxLeaderboardLimit).Return(entries, nil)
		cache.On("Set", mock.Anything, MaxLeaderboardLimit, entries).Return(nil)

		svc := NewLeaderboardService(repo, cache)
		_, err := svc.GetLeaderboard(context.Background(), 10000)

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
