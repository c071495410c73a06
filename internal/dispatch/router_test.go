package dispatch

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/internal/platform"
)

// fakePostRepo is an in-memory PostRepository mirroring the conditional
// update semantics of the SQL implementation.
type fakePostRepo struct {
	mu         sync.Mutex
	nextID     int64
	posts      map[int64]*models.Post
	listDueErr error
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*models.Post)}
}

func (f *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	stored := *post
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.posts[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (f *fakePostRepo) ListByBrandID(ctx context.Context, brandID int64) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var posts []*models.Post
	for _, p := range f.posts {
		if p.BrandID == brandID {
			copied := *p
			posts = append(posts, &copied)
		}
	}
	return posts, nil
}

func (f *fakePostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listDueErr != nil {
		return nil, f.listDueErr
	}
	var due []*models.Post
	for _, p := range f.posts {
		if p.Status == models.PostStatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(now) {
			copied := *p
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(*due[j].ScheduledAt) })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (f *fakePostRepo) Claim(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok || post.Status != models.PostStatusScheduled {
		return false, nil
	}
	post.Status = models.PostStatusPublishing
	post.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakePostRepo) ReleaseStale(ctx context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var released int64
	for _, p := range f.posts {
		if p.Status == models.PostStatusPublishing && p.UpdatedAt.Before(before) {
			p.Status = models.PostStatusScheduled
			released++
		}
	}
	return released, nil
}

func (f *fakePostRepo) RecordOutcome(ctx context.Context, id int64, status string, results []models.PlatformResult) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok {
		return false, nil
	}
	if post.Status != models.PostStatusPublishing && post.Status != status {
		return false, nil
	}
	post.Status = status
	post.Results = append([]models.PlatformResult(nil), results...)
	post.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakePostRepo) Reschedule(ctx context.Context, id int64, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[id]
	if !ok || post.Status != models.PostStatusFailed {
		return false, nil
	}
	post.Status = models.PostStatusScheduled
	post.ScheduledAt = &at
	post.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakePostRepo) CheckByBrandID(ctx context.Context, postID, brandID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	post, ok := f.posts[postID]
	return ok && post.BrandID == brandID, nil
}

func (f *fakePostRepo) get(id int64) *models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts[id]
}

type fakeEnqueuer struct {
	mu      sync.Mutex
	postIDs []int64
	delays  []time.Duration
}

func (e *fakeEnqueuer) EnqueueDelivery(postID int64, delay time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.postIDs = append(e.postIDs, postID)
	e.delays = append(e.delays, delay)
	return nil
}

func newTestRouter(repo *fakePostRepo, fb *recordingPublisher, enq Enqueuer) *Router {
	registry := platform.NewRegistry()
	registry.Register(platform.Facebook, fb)
	resolver := &stubResolver{creds: map[platform.Platform]platform.Credential{
		platform.Facebook: {AccountID: "a", AccessToken: "t"},
	}}
	dispatcher := newTestDispatcher(registry, resolver, time.Second)
	return NewRouter(repo, dispatcher, NewRecorder(repo), enq)
}

func TestRouterDefersFuturePost(t *testing.T) {
	repo := newFakePostRepo()
	fb := &recordingPublisher{result: platform.Succeeded(platform.Facebook, "fb1")}
	enq := &fakeEnqueuer{}
	router := newTestRouter(repo, fb, enq)

	now := time.Now()
	router.now = func() time.Time { return now }
	scheduledAt := now.Add(time.Hour)

	outcome, err := router.Submit(context.Background(), &models.Post{
		BrandID:     1,
		Platforms:   []string{"facebook"},
		Caption:     "later",
		ScheduledAt: &scheduledAt,
	})
	require.NoError(t, err)

	assert.True(t, outcome.Scheduled)
	assert.Empty(t, outcome.Results)
	assert.Zero(t, fb.callCount(), "no publish call at creation time for a future post")

	stored := repo.get(outcome.PostID)
	require.NotNil(t, stored)
	assert.Equal(t, models.PostStatusScheduled, stored.Status)
	require.NotNil(t, stored.ScheduledAt)

	assert.Equal(t, []int64{outcome.PostID}, enq.postIDs)
	assert.Equal(t, time.Hour, enq.delays[0])
}

func TestRouterPublishesImmediately(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)

	tests := []struct {
		name        string
		scheduledAt *time.Time
	}{
		{name: "no requested time", scheduledAt: nil},
		{name: "past time", scheduledAt: &past},
		{name: "exactly now", scheduledAt: &now},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakePostRepo()
			fb := &recordingPublisher{result: platform.Succeeded(platform.Facebook, "fb1")}
			enq := &fakeEnqueuer{}
			router := newTestRouter(repo, fb, enq)
			router.now = func() time.Time { return now }

			outcome, err := router.Submit(context.Background(), &models.Post{
				BrandID:     1,
				Platforms:   []string{"facebook"},
				Caption:     "now",
				ScheduledAt: tt.scheduledAt,
			})
			require.NoError(t, err)

			assert.False(t, outcome.Scheduled)
			assert.Equal(t, models.PostStatusPublished, outcome.Status)
			require.Len(t, outcome.Results, 1)
			assert.True(t, outcome.Results[0].Success)
			assert.Equal(t, 1, fb.callCount())
			assert.Empty(t, enq.postIDs)

			stored := repo.get(outcome.PostID)
			require.NotNil(t, stored)
			assert.Equal(t, models.PostStatusPublished, stored.Status)
			assert.Len(t, stored.Results, 1)
		})
	}
}

func TestRouterImmediateFailureRecorded(t *testing.T) {
	repo := newFakePostRepo()
	fb := &recordingPublisher{result: platform.Failed(platform.Facebook, platform.FailureRejected, "bad content")}
	router := newTestRouter(repo, fb, &fakeEnqueuer{})

	outcome, err := router.Submit(context.Background(), &models.Post{
		BrandID:   1,
		Platforms: []string{"facebook"},
		Caption:   "now",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusFailed, outcome.Status)
	stored := repo.get(outcome.PostID)
	assert.Equal(t, models.PostStatusFailed, stored.Status)
	assert.Equal(t, "rejected", stored.Results[0].ErrorKind)
}
