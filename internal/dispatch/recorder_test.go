package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/internal/platform"
)

func TestRecorderWritesFullResultSet(t *testing.T) {
	repo := newFakePostRepo()
	id, err := repo.Create(context.Background(), nil, &models.Post{
		BrandID: 1, Platforms: []string{"facebook", "instagram"},
		Status: models.PostStatusPublishing,
	})
	require.NoError(t, err)

	recorder := NewRecorder(repo)
	results := []platform.PublishResult{
		platform.Succeeded(platform.Facebook, "fb123"),
		platform.Failed(platform.Instagram, platform.FailureNotConfigured, "no credential"),
	}

	status, err := recorder.Record(context.Background(), id, results)
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPublished, status)

	stored := repo.get(id)
	assert.Equal(t, models.PostStatusPublished, stored.Status)
	require.Len(t, stored.Results, 2)
	assert.Equal(t, "fb123", stored.Results[0].PlatformPostID)
	assert.Equal(t, "not_configured", stored.Results[1].ErrorKind)
}

func TestRecorderIdempotent(t *testing.T) {
	repo := newFakePostRepo()
	id, err := repo.Create(context.Background(), nil, &models.Post{
		BrandID: 1, Platforms: []string{"facebook"},
		Status: models.PostStatusPublishing,
	})
	require.NoError(t, err)

	recorder := NewRecorder(repo)
	results := []platform.PublishResult{platform.Succeeded(platform.Facebook, "fb123")}

	_, err = recorder.Record(context.Background(), id, results)
	require.NoError(t, err)
	first := *repo.get(id)

	// A retried recorder call with the same result set re-applies cleanly.
	_, err = recorder.Record(context.Background(), id, results)
	require.NoError(t, err)
	second := *repo.get(id)

	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Results, second.Results)
}

func TestRecorderRejectsUnclaimedPost(t *testing.T) {
	repo := newFakePostRepo()
	at := timeNowPlusHour()
	id, err := repo.Create(context.Background(), nil, &models.Post{
		BrandID: 1, Platforms: []string{"facebook"},
		Status: models.PostStatusScheduled, ScheduledAt: &at,
	})
	require.NoError(t, err)

	recorder := NewRecorder(repo)
	_, err = recorder.Record(context.Background(), id,
		[]platform.PublishResult{platform.Succeeded(platform.Facebook, "fb123")})

	assert.Error(t, err)
	assert.Equal(t, models.PostStatusScheduled, repo.get(id).Status)
}

func timeNowPlusHour() time.Time {
	return time.Now().Add(time.Hour)
}
