package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-hub/domain/dto"
	"social-hub/domain/model"
	httpHandler "social-hub/interfaces/http"
	"social-hub/usecase"
)

type stubConnectUsecase struct {
	instruction *usecase.RedirectInstruction
	beginErr    error

	completeConn   *model.PlatformConnection
	completeErr    error
	gotCookieValue string
	gotState       string
	gotCode        string

	disconnectErr error
	statuses      []dto.ConnectionStatus
}

func (s *stubConnectUsecase) BeginConnect(userID, platformID string) (*usecase.RedirectInstruction, error) {
	return s.instruction, s.beginErr
}

func (s *stubConnectUsecase) CompleteConnect(ctx context.Context, platformID, returnedState, code, cookieValue string) (*model.PlatformConnection, error) {
	s.gotState = returnedState
	s.gotCode = code
	s.gotCookieValue = cookieValue
	return s.completeConn, s.completeErr
}

func (s *stubConnectUsecase) Disconnect(ctx context.Context, userID, platformID string) error {
	return s.disconnectErr
}

func (s *stubConnectUsecase) GetConnections(ctx context.Context, userID string) ([]dto.ConnectionStatus, error) {
	return s.statuses, nil
}

const connectHandlerSecret = "handler-secret"

func connectRouter(uc *stubConnectUsecase, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := httpHandler.NewConnectHandler(uc)
	router.GET("/connect/:platform", func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
		}
		handler.Begin(c)
	})
	router.GET("/connect/:platform/callback", handler.Callback)
	return router
}

func TestConnectBegin_SetsStateCookieAndRedirects(t *testing.T) {
	pending := model.NewPendingAuthorization("youtube", "42")
	uc := &stubConnectUsecase{instruction: &usecase.RedirectInstruction{
		AuthURL:     "https://accounts.google.com/o/oauth2/auth?state=" + pending.State,
		Pending:     pending,
		CookieValue: pending.Encode(connectHandlerSecret),
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/connect/youtube", nil)
	connectRouter(uc, "42").ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, uc.instruction.AuthURL, rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "connect_state_youtube", cookies[0].Name)
	assert.Equal(t, uc.instruction.CookieValue, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, int(model.PendingAuthTTL.Seconds()), cookies[0].MaxAge)
}

func TestConnectBegin_RequiresUser(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/connect/youtube", nil)
	connectRouter(&stubConnectUsecase{}, "").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestConnectBegin_UnsupportedPlatformIs400(t *testing.T) {
	uc := &stubConnectUsecase{beginErr: fmt.Errorf("%w: myspace", model.ErrUnsupportedPlatform)}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/connect/myspace", nil)
	connectRouter(uc, "42").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConnectCallback_SuccessClearsCookieAndRedirects(t *testing.T) {
	pending := model.NewPendingAuthorization("youtube", "42")
	uc := &stubConnectUsecase{completeConn: &model.PlatformConnection{
		UserID: "42", Platform: "youtube", Username: "Ada Channel",
	}}

	rec := httptest.NewRecorder()
	signed := pending.Encode(connectHandlerSecret)
	req := httptest.NewRequest(http.MethodGet, "/connect/youtube/callback?state="+pending.State+"&code=auth-code", nil)
	req.AddCookie(&http.Cookie{Name: "connect_state_youtube", Value: signed})
	connectRouter(uc, "").ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "connected=1")
	assert.Contains(t, rec.Header().Get("Location"), "platform=youtube")

	assert.Equal(t, pending.State, uc.gotState)
	assert.Equal(t, "auth-code", uc.gotCode)
	assert.Equal(t, signed, uc.gotCookieValue)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "connect_state_youtube", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0, "cookie must be cleared")
}

func TestConnectCallback_FailureRedirectsWithFlag(t *testing.T) {
	uc := &stubConnectUsecase{completeErr: model.ErrStateMismatch}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/connect/youtube/callback?state=bogus&code=auth-code", nil)
	connectRouter(uc, "").ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "connected=0")
}
