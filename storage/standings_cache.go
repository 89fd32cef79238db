package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Dosada05/league-system/models"
)

// StandingsCache keeps computed tables between requests. Result writes
// invalidate the entry of their tournament.
type StandingsCache interface {
	Get(ctx context.Context, tournamentID string) (*models.TournamentStats, bool, error)
	Set(ctx context.Context, stats *models.TournamentStats) error
	Invalidate(ctx context.Context, tournamentID string) error
}

func standingsKey(tournamentID string) string {
	return fmt.Sprintf("standings:%s", tournamentID)
}

type RedisStandingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStandingsCache(addr, password string, db int, ttl time.Duration) (*RedisStandingsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStandingsCache{client: client, ttl: ttl}, nil
}

func (c *RedisStandingsCache) Get(ctx context.Context, tournamentID string) (*models.TournamentStats, bool, error) {
	data, err := c.client.Get(ctx, standingsKey(tournamentID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read standings cache: %w", err)
	}

	var stats models.TournamentStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached standings: %w", err)
	}
	return &stats, true, nil
}

func (c *RedisStandingsCache) Set(ctx context.Context, stats *models.TournamentStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal standings: %w", err)
	}
	return c.client.Set(ctx, standingsKey(stats.TournamentID), data, c.ttl).Err()
}

func (c *RedisStandingsCache) Invalidate(ctx context.Context, tournamentID string) error {
	return c.client.Del(ctx, standingsKey(tournamentID)).Err()
}

func (c *RedisStandingsCache) Close() error {
	return c.client.Close()
}

// NoopStandingsCache is used when Redis is not configured.
type NoopStandingsCache struct{}

func (NoopStandingsCache) Get(context.Context, string) (*models.TournamentStats, bool, error) {
	return nil, false, nil
}

func (NoopStandingsCache) Set(context.Context, *models.TournamentStats) error { return nil }

func (NoopStandingsCache) Invalidate(context.Context, string) error { return nil }
