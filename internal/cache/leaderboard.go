package cache

import (
	"context"
	"fmt"
	"time"

	"bountyhunter/internal/model"
	"bountyhunter/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type Config struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	TTL      int    `json:"ttl"`
}

// LeaderboardCache keeps short-lived leaderboard snapshots in redis so the
// ranking query does not run on every read.
type LeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(cfg Config) (*LeaderboardCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Logger().Info("Connected to redis successfully")

	ttl := time.Duration(cfg.TTL) * time.Second
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &LeaderboardCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func (c *LeaderboardCache) Close() error {
	return c.client.Close()
}

func key(limit int) string {
	return fmt.Sprintf("leaderboard:top:%d", limit)
}

// Get returns the cached snapshot, or nil on miss. Redis failures are logged
// and reported as misses so reads fall through to the database.
func (c *LeaderboardCache) Get(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	raw, err := c.client.Get(ctx, key(limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Logger().Warn("leaderboard cache read failed", zap.Error(err))
		}
		return nil, nil
	}

	var entries []*model.LeaderboardEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cached leaderboard: %w", err)
	}

	return entries, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, limit int, entries []*model.LeaderboardEntry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard: %w", err)
	}

	if err := c.client.Set(ctx, key(limit), raw, c.ttl).Err(); err != nil {
		logger.Logger().Warn("leaderboard cache write failed", zap.Error(err))
	}

	return nil
}
