package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-hub/domain/model"
	"social-hub/domain/registry"
	"social-hub/domain/repository"
)

// fakeConnectionRepo is an in-memory IConnection recording call counts.
type fakeConnectionRepo struct {
	mu      sync.Mutex
	records map[string]*model.PlatformConnection
	upserts int
	deletes int
	getErr  error
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{records: map[string]*model.PlatformConnection{}}
}

func connKey(userID, platform string) string { return userID + "/" + platform }

func (f *fakeConnectionRepo) Get(ctx context.Context, userID, platform string) (*model.PlatformConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.records[connKey(userID, platform)]
	if !ok {
		return nil, model.ErrNotConnected
	}
	return c, nil
}

func (f *fakeConnectionRepo) Upsert(ctx context.Context, conn *model.PlatformConnection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	f.records[connKey(conn.UserID, conn.Platform)] = conn
	return nil
}

func (f *fakeConnectionRepo) Delete(ctx context.Context, userID, platform string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	_, ok := f.records[connKey(userID, platform)]
	delete(f.records, connKey(userID, platform))
	return ok, nil
}

func (f *fakeConnectionRepo) ListByUser(ctx context.Context, userID string) ([]*model.PlatformConnection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.PlatformConnection
	for _, c := range f.records {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakePlatform is a scriptable ISocialPlatform counting invocations.
type fakePlatform struct {
	exchangeCalls int32
	revokeCalls   int32
	publishCalls  int32

	exchangeToken *model.PlatformToken
	exchangeErr   error
	revokeErr     error
	publishID     string
	publishErr    error
	publishDelay  time.Duration
}

func (f *fakePlatform) ExchangeCode(ctx context.Context, code string) (*model.PlatformToken, error) {
	atomic.AddInt32(&f.exchangeCalls, 1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeToken, nil
}

func (f *fakePlatform) Revoke(ctx context.Context, accessToken string) error {
	atomic.AddInt32(&f.revokeCalls, 1)
	return f.revokeErr
}

func (f *fakePlatform) Publish(ctx context.Context, accessToken string, content repository.PublishContent) (string, error) {
	atomic.AddInt32(&f.publishCalls, 1)
	if f.publishDelay > 0 {
		select {
		case <-time.After(f.publishDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.publishErr != nil {
		return "", f.publishErr
	}
	return f.publishID, nil
}

const connectTestSecret = "connect-secret"

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg, err := registry.New([]model.PlatformConfig{
		{
			ID:          "youtube",
			DisplayName: "YouTube",
			ClientID:    "yt-client",
			AuthURL:     "https://accounts.google.com/o/oauth2/auth",
			Scopes:      []string{"scope.a", "scope.b"},
			RedirectURL: "http://localhost:10001/connect/youtube/callback",
		},
		{
			ID:          "x",
			DisplayName: "X",
			ClientID:    "x-client",
			AuthURL:     "https://x.com/i/oauth2/authorize",
			Scopes:      []string{"tweet.write"},
			RedirectURL: "http://localhost:10001/connect/x/callback",
		},
	})
	require.NoError(t, err)
	return reg
}

func TestBeginConnect_BuildsAuthorizationURL(t *testing.T) {
	uc := NewConnectUsecase(testRegistry(t), nil, newFakeConnectionRepo(), connectTestSecret)

	instruction, err := uc.BeginConnect("42", "youtube")
	require.NoError(t, err)

	u, err := url.Parse(instruction.AuthURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "yt-client", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "http://localhost:10001/connect/youtube/callback", q.Get("redirect_uri"))
	assert.Equal(t, "scope.a scope.b", q.Get("scope"))
	assert.Equal(t, instruction.Pending.State, q.Get("state"))
	assert.Equal(t, "42", instruction.Pending.UserID)
	assert.Equal(t, "youtube", instruction.Pending.Platform)

	decoded, err := model.DecodePendingAuthorization(instruction.CookieValue, connectTestSecret)
	require.NoError(t, err, "cookie value must verify under the signing secret")
	assert.Equal(t, "42", decoded.UserID)
}

func TestBeginConnect_UnsupportedPlatform(t *testing.T) {
	uc := NewConnectUsecase(testRegistry(t), nil, newFakeConnectionRepo(), connectTestSecret)

	_, err := uc.BeginConnect("42", "myspace")
	assert.True(t, errors.Is(err, model.ErrUnsupportedPlatform))
}

func TestBeginConnect_RequiresUser(t *testing.T) {
	uc := NewConnectUsecase(testRegistry(t), nil, newFakeConnectionRepo(), connectTestSecret)

	_, err := uc.BeginConnect("", "youtube")
	assert.True(t, errors.Is(err, model.ErrAuthenticationRequired))
}

func TestCompleteConnect_PersistsConnection(t *testing.T) {
	repo := newFakeConnectionRepo()
	expiry := time.Now().Add(time.Hour)
	adapter := &fakePlatform{exchangeToken: &model.PlatformToken{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    &expiry,
		Username:     "Ada Channel",
	}}
	uc := NewConnectUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, repo, connectTestSecret)

	pending := model.NewPendingAuthorization("youtube", "42")
	conn, err := uc.CompleteConnect(context.Background(), "youtube", pending.State, "auth-code", pending.Encode(connectTestSecret))
	require.NoError(t, err)

	assert.Equal(t, "42", conn.UserID)
	assert.Equal(t, "youtube", conn.Platform)
	assert.Equal(t, "access", conn.AccessToken)
	assert.Equal(t, "Ada Channel", conn.Username)
	assert.Equal(t, 1, repo.upserts)

	stored, err := repo.Get(context.Background(), "42", "youtube")
	require.NoError(t, err)
	assert.Equal(t, "refresh", stored.RefreshToken)
}

// A cookie assembled by the client, naming someone else's user id and a state
// the client chose itself, must never reach the exchange or the store.
func TestCompleteConnect_ForgedCookieRejected(t *testing.T) {
	repo := newFakeConnectionRepo()
	adapter := &fakePlatform{exchangeToken: &model.PlatformToken{AccessToken: "access"}}
	uc := NewConnectUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, repo, connectTestSecret)

	forged := fmt.Sprintf("youtube.7.attacker-chosen-state.%d", time.Now().Unix())
	for _, cookie := range []string{
		forged,
		forged + ".bogus-tag",
		model.NewPendingAuthorization("youtube", "7").Encode("guessed-secret"),
	} {
		_, err := uc.CompleteConnect(context.Background(), "youtube", "attacker-chosen-state", "auth-code", cookie)
		assert.True(t, errors.Is(err, model.ErrStateMismatch), "cookie %q", cookie)
	}
	assert.Zero(t, atomic.LoadInt32(&adapter.exchangeCalls))
	assert.Zero(t, repo.upserts)
}

// The exchange-and-persist tail must finish even when the caller aborts
// mid-callback, otherwise the authorization code is consumed with nothing
// stored.
func TestCompleteConnect_FinishesAfterCallerAbort(t *testing.T) {
	repo := newFakeConnectionRepo()
	adapter := &fakePlatform{exchangeToken: &model.PlatformToken{AccessToken: "access"}}
	uc := NewConnectUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, repo, connectTestSecret)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pending := model.NewPendingAuthorization("youtube", "42")
	conn, err := uc.CompleteConnect(ctx, "youtube", pending.State, "auth-code", pending.Encode(connectTestSecret))
	require.NoError(t, err)
	assert.Equal(t, "42", conn.UserID)
	assert.Equal(t, 1, repo.upserts)
}

func TestCompleteConnect_StateMismatchRejectsBeforeExchange(t *testing.T) {
	repo := newFakeConnectionRepo()
	adapter := &fakePlatform{exchangeToken: &model.PlatformToken{AccessToken: "access"}}
	uc := NewConnectUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, repo, connectTestSecret)

	pending := model.NewPendingAuthorization("youtube", "42")
	other := model.NewPendingAuthorization("youtube", "42")

	_, err := uc.CompleteConnect(context.Background(), "youtube", other.State, "auth-code", pending.Encode(connectTestSecret))
	assert.True(t, errors.Is(err, model.ErrStateMismatch))
	assert.Zero(t, atomic.LoadInt32(&adapter.exchangeCalls))
	assert.Zero(t, repo.upserts)
}

func TestCompleteConnect_PlatformMismatchRejected(t *testing.T) {
	repo := newFakeConnectionRepo()
	adapter := &fakePlatform{exchangeToken: &model.PlatformToken{AccessToken: "access"}}
	uc := NewConnectUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"x": adapter}, repo, connectTestSecret)

	pending := model.NewPendingAuthorization("youtube", "42")
	_, err := uc.CompleteConnect(context.Background(), "x", pending.State, "auth-code", pending.Encode(connectTestSecret))
	assert.True(t, errors.Is(err, model.ErrStateMismatch))
	assert.Zero(t, atomic.LoadInt32(&adapter.exchangeCalls))
}

func TestCompleteConnect_MissingCookieMeansExpired(t *testing.T) {
	uc := NewConnectUsecase(testRegistry(t), nil, newFakeConnectionRepo(), connectTestSecret)

	pending := model.NewPendingAuthorization("youtube", "42")
	_, err := uc.CompleteConnect(context.Background(), "youtube", pending.State, "auth-code", "")
	assert.True(t, errors.Is(err, model.ErrStateExpired))
}

func TestCompleteConnect_ExpiredFlowRejected(t *testing.T) {
	repo := newFakeConnectionRepo()
	adapter := &fakePlatform{exchangeToken: &model.PlatformToken{AccessToken: "access"}}
	uc := NewConnectUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, repo, connectTestSecret)

	pending := model.NewPendingAuthorization("youtube", "42")
	pending.IssuedAt = time.Now().UTC().Add(-model.PendingAuthTTL - time.Minute)

	_, err := uc.CompleteConnect(context.Background(), "youtube", pending.State, "auth-code", pending.Encode(connectTestSecret))
	assert.True(t, errors.Is(err, model.ErrStateExpired))
	assert.Zero(t, atomic.LoadInt32(&adapter.exchangeCalls))
	assert.Zero(t, repo.upserts)
}

func TestCompleteConnect_ExchangeFailureWritesNothing(t *testing.T) {
	repo := newFakeConnectionRepo()
	adapter := &fakePlatform{exchangeErr: model.ErrTokenExchangeFailed}
	uc := NewConnectUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, repo, connectTestSecret)

	pending := model.NewPendingAuthorization("youtube", "42")
	_, err := uc.CompleteConnect(context.Background(), "youtube", pending.State, "bad-code", pending.Encode(connectTestSecret))
	assert.True(t, errors.Is(err, model.ErrTokenExchangeFailed))
	assert.Zero(t, repo.upserts)
}

func TestDisconnect_DeletesThenRevokes(t *testing.T) {
	repo := newFakeConnectionRepo()
	require.NoError(t, repo.Upsert(context.Background(), &model.PlatformConnection{
		UserID: "42", Platform: "youtube", AccessToken: "access",
	}))
	repo.upserts = 0

	adapter := &fakePlatform{}
	uc := NewConnectUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, repo, connectTestSecret)

	require.NoError(t, uc.Disconnect(context.Background(), "42", "youtube"))
	assert.Equal(t, 1, repo.deletes)
	assert.Equal(t, int32(1), atomic.LoadInt32(&adapter.revokeCalls))

	_, err := repo.Get(context.Background(), "42", "youtube")
	assert.True(t, errors.Is(err, model.ErrNotConnected))
}

func TestDisconnect_IdempotentWhenNotConnected(t *testing.T) {
	adapter := &fakePlatform{}
	uc := NewConnectUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, newFakeConnectionRepo(), connectTestSecret)

	assert.NoError(t, uc.Disconnect(context.Background(), "42", "youtube"))
	assert.Zero(t, atomic.LoadInt32(&adapter.revokeCalls), "nothing stored, nothing to revoke")
}

func TestDisconnect_RevocationFailureIsSwallowed(t *testing.T) {
	repo := newFakeConnectionRepo()
	require.NoError(t, repo.Upsert(context.Background(), &model.PlatformConnection{
		UserID: "42", Platform: "youtube", AccessToken: "access",
	}))

	adapter := &fakePlatform{revokeErr: errors.New("provider down")}
	uc := NewConnectUsecase(testRegistry(t), map[string]repository.ISocialPlatform{"youtube": adapter}, repo, connectTestSecret)

	assert.NoError(t, uc.Disconnect(context.Background(), "42", "youtube"))
	_, err := repo.Get(context.Background(), "42", "youtube")
	assert.True(t, errors.Is(err, model.ErrNotConnected), "local record removed despite failed revocation")
}

func TestGetConnections_CoversEveryRegisteredPlatform(t *testing.T) {
	repo := newFakeConnectionRepo()
	require.NoError(t, repo.Upsert(context.Background(), &model.PlatformConnection{
		UserID: "42", Platform: "x", Username: "@ada",
	}))

	uc := NewConnectUsecase(testRegistry(t), nil, repo, connectTestSecret)
	statuses, err := uc.GetConnections(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	byPlatform := map[string]bool{}
	for _, s := range statuses {
		byPlatform[s.Platform] = s.Connected
		if s.Platform == "x" {
			assert.Equal(t, "@ada", s.Username)
		}
	}
	assert.True(t, byPlatform["x"])
	assert.False(t, byPlatform["youtube"])
}
