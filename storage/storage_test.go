package storage

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/models"
)

func TestJoinPublicURL(t *testing.T) {
	tests := []struct {
		base, key, want string
	}{
		{"https://cdn.example.com", "exports/t1.json", "https://cdn.example.com/exports/t1.json"},
		{"https://cdn.example.com/", "/exports/t1.json", "https://cdn.example.com/exports/t1.json"},
		{"https://cdn.example.com/league", "exports/t1.json", "https://cdn.example.com/league/exports/t1.json"},
		{"", "exports/t1.json", ""},
		{"https://cdn.example.com", "", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPublicURL(tt.base, tt.key), "%s + %s", tt.base, tt.key)
	}
}

func TestNewCloudflareR2Uploader_RequiresAllFields(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"}, logger)
	require.Error(t, err)

	uploader, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{
		AccountID:       "acc",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "league",
		PublicBaseURL:   "https://cdn.example.com",
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/standings/t1.json", uploader.GetPublicURL("standings/t1.json"))
}

func TestNoopStandingsCache(t *testing.T) {
	var cache StandingsCache = NoopStandingsCache{}
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &models.TournamentStats{TournamentID: "t1"}))
	stats, ok, err := cache.Get(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, stats)
	assert.NoError(t, cache.Invalidate(ctx, "t1"))
}

func TestNewRedisStandingsCache_Unreachable(t *testing.T) {
	_, err := NewRedisStandingsCache("127.0.0.1:1", "", 0, time.Minute)
	assert.Error(t, err)
}

func TestStandingsKey(t *testing.T) {
	assert.Equal(t, "standings:abc", standingsKey("abc"))
}
