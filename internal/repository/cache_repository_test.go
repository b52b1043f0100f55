package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backoffice-api/internal/models"
	appErrors "github.com/noah-isme/backoffice-api/pkg/errors"
)

func TestCacheRepositoryRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	repo := NewCacheRepository(rdb, "cache:")
	ctx := context.Background()

	var out models.ContentResponse
	assert.True(t, errors.Is(repo.Get(ctx, "dashboard:content", &out), appErrors.ErrCacheMiss))

	require.NoError(t, repo.Set(ctx, "dashboard:content", models.ContentResponse{Content: "<p>hi</p>"}, time.Minute))
	assert.True(t, mr.Exists("cache:dashboard:content"))

	require.NoError(t, repo.Get(ctx, "dashboard:content", &out))
	assert.Equal(t, "<p>hi</p>", out.Content)

	require.NoError(t, repo.Delete(ctx, "dashboard:content"))
	assert.True(t, errors.Is(repo.Get(ctx, "dashboard:content", &out), appErrors.ErrCacheMiss))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "")
	var out models.ContentResponse
	assert.True(t, errors.Is(repo.Get(context.Background(), "k", &out), appErrors.ErrCacheMiss))
	assert.NoError(t, repo.Set(context.Background(), "k", out, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
}
