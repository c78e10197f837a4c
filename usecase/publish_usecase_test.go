package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-hub/domain/model"
	"social-hub/domain/repository"
)

// fakeContentRepo is an in-memory IContent with an atomic like counter.
type fakeContentRepo struct {
	mu       sync.Mutex
	items    map[string]*model.ContentItem
	statuses map[string]map[string]string
	deletes  int
}

func newFakeContentRepo(items ...*model.ContentItem) *fakeContentRepo {
	f := &fakeContentRepo{
		items:    map[string]*model.ContentItem{},
		statuses: map[string]map[string]string{},
	}
	for _, it := range items {
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeContentRepo) Get(ctx context.Context, contentID string) (*model.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[contentID]
	if !ok {
		return nil, model.ErrNotFound
	}
	return it, nil
}

func (f *fakeContentRepo) Delete(ctx context.Context, contentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[contentID]; !ok {
		return model.ErrNotFound
	}
	delete(f.items, contentID)
	f.deletes++
	return nil
}

func (f *fakeContentRepo) IncrementLikes(ctx context.Context, contentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	it, ok := f.items[contentID]
	if !ok {
		return model.ErrNotFound
	}
	it.Likes++
	return nil
}

func (f *fakeContentRepo) SetPlatformStatus(ctx context.Context, contentID string, status map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[contentID] = status
	return nil
}

func testContent() *model.ContentItem {
	return &model.ContentItem{
		ID:          "c1",
		UserID:      "42",
		Title:       "Launch day",
		Description: "We shipped",
		MediaRef:    "uploads/launch.mp4",
	}
}

func connectedRepo(platforms ...string) *fakeConnectionRepo {
	repo := newFakeConnectionRepo()
	for _, p := range platforms {
		_ = repo.Upsert(context.Background(), &model.PlatformConnection{
			UserID: "42", Platform: p, AccessToken: "tok-" + p,
		})
	}
	return repo
}

func TestPublish_PartialFailureStillReportsEveryAttempt(t *testing.T) {
	contentRepo := newFakeContentRepo(testContent())
	good := &fakePlatform{publishID: "yt-123"}
	bad := &fakePlatform{publishErr: errors.New("rate limited")}
	adapters := map[string]repository.ISocialPlatform{"youtube": good, "x": bad}

	uc := NewPublishUsecase(testRegistry(t), adapters, connectedRepo("youtube", "x"), contentRepo)

	results, err := uc.Publish(context.Background(), "42", "c1", []string{"youtube", "x"})
	require.NoError(t, err, "a failed platform must not fail the batch")
	require.Len(t, results, 2)

	byPlatform := map[string]model.PublishAttemptResult{}
	for _, r := range results {
		byPlatform[r.Platform] = r
	}
	assert.True(t, byPlatform["youtube"].Success)
	assert.Equal(t, "yt-123", byPlatform["youtube"].ExternalPostID)
	assert.False(t, byPlatform["x"].Success)
	assert.Contains(t, byPlatform["x"].Error, "rate limited")

	assert.Equal(t, map[string]string{"youtube": "published", "x": "failed"}, contentRepo.statuses["c1"])
}

func TestPublish_SlowPlatformDoesNotStallSiblings(t *testing.T) {
	contentRepo := newFakeContentRepo(testContent())
	fast := &fakePlatform{publishID: "fb-1"}
	slow := &fakePlatform{publishID: "yt-1", publishDelay: 150 * time.Millisecond}
	adapters := map[string]repository.ISocialPlatform{"youtube": slow, "x": fast}

	uc := NewPublishUsecase(testRegistry(t), adapters, connectedRepo("youtube", "x"), contentRepo)

	results, err := uc.Publish(context.Background(), "42", "c1", []string{"youtube", "x"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Success, "platform %s", r.Platform)
	}
}

// Statuses are folded even when the caller has aborted by the time the
// attempts finish.
func TestPublish_RecordsStatusesAfterCallerAbort(t *testing.T) {
	contentRepo := newFakeContentRepo(testContent())
	adapter := &fakePlatform{publishID: "yt-1", publishDelay: 20 * time.Millisecond}

	uc := NewPublishUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, connectedRepo("youtube"), contentRepo)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	results, err := uc.Publish(ctx, "42", "c1", []string{"youtube"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success, "attempt runs detached from the aborted caller")
	assert.Equal(t, map[string]string{"youtube": "published"}, contentRepo.statuses["c1"])
}

func TestPublish_NotConnectedIsAFailedAttemptNotAnError(t *testing.T) {
	contentRepo := newFakeContentRepo(testContent())
	adapter := &fakePlatform{publishID: "yt-1"}
	adapters := map[string]repository.ISocialPlatform{"youtube": adapter, "x": &fakePlatform{}}

	// Only youtube is connected.
	uc := NewPublishUsecase(testRegistry(t), adapters, connectedRepo("youtube"), contentRepo)

	results, err := uc.Publish(context.Background(), "42", "c1", []string{"youtube", "x"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byPlatform := map[string]model.PublishAttemptResult{}
	for _, r := range results {
		byPlatform[r.Platform] = r
	}
	assert.True(t, byPlatform["youtube"].Success)
	assert.False(t, byPlatform["x"].Success)
	assert.Contains(t, byPlatform["x"].Error, model.ErrNotConnected.Error())
}

func TestPublish_EmptyTargetsRejected(t *testing.T) {
	uc := NewPublishUsecase(testRegistry(t), nil, newFakeConnectionRepo(), newFakeContentRepo(testContent()))

	_, err := uc.Publish(context.Background(), "42", "c1", nil)
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))
}

func TestPublish_UnknownPlatformRejectsWholeBatch(t *testing.T) {
	uc := NewPublishUsecase(testRegistry(t), nil, newFakeConnectionRepo(), newFakeContentRepo(testContent()))

	_, err := uc.Publish(context.Background(), "42", "c1", []string{"youtube", "myspace"})
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))
}

func TestPublish_MissingContentReportedAsOrchestrationResult(t *testing.T) {
	uc := NewPublishUsecase(testRegistry(t), nil, newFakeConnectionRepo(), newFakeContentRepo())

	results, err := uc.Publish(context.Background(), "42", "ghost", []string{"youtube"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.OrchestrationPlatform, results[0].Platform)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].Error, model.ErrNotFound.Error())
}

func TestPublish_ForeignContentForbidden(t *testing.T) {
	contentRepo := newFakeContentRepo(testContent())
	uc := NewPublishUsecase(testRegistry(t), nil, newFakeConnectionRepo(), contentRepo)

	_, err := uc.Publish(context.Background(), "99", "c1", []string{"youtube"})
	assert.True(t, errors.Is(err, model.ErrForbidden))
}

func TestPublish_RequiresAuthentication(t *testing.T) {
	uc := NewPublishUsecase(testRegistry(t), nil, newFakeConnectionRepo(), newFakeContentRepo())

	_, err := uc.Publish(context.Background(), "", "c1", []string{"youtube"})
	assert.True(t, errors.Is(err, model.ErrAuthenticationRequired))
}

func TestPublish_DuplicateTargetsCollapsed(t *testing.T) {
	contentRepo := newFakeContentRepo(testContent())
	adapter := &fakePlatform{publishID: "yt-1"}
	uc := NewPublishUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, connectedRepo("youtube"), contentRepo)

	results, err := uc.Publish(context.Background(), "42", "c1", []string{"youtube", "youtube"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestPublish_BroadcasterSeesEveryResult(t *testing.T) {
	contentRepo := newFakeContentRepo(testContent())
	adapters := map[string]repository.ISocialPlatform{
		"youtube": &fakePlatform{publishID: "yt-1"},
		"x":       &fakePlatform{publishErr: errors.New("boom")},
	}

	var mu sync.Mutex
	var seen []model.PublishAttemptResult
	uc := NewPublishUsecase(testRegistry(t), adapters, connectedRepo("youtube", "x"), contentRepo).
		WithBroadcaster(func(userID, contentID string, result model.PublishAttemptResult) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, "42", userID)
			assert.Equal(t, "c1", contentID)
			seen = append(seen, result)
		})

	_, err := uc.Publish(context.Background(), "42", "c1", []string{"youtube", "x"})
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 2)
}
