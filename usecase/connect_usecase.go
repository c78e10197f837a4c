package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/url"
	"strings"
	"time"

	"social-hub/domain/dto"
	"social-hub/domain/model"
	"social-hub/domain/registry"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
)

const (
	exchangeTimeout = 20 * time.Second
	revokeTimeout   = 10 * time.Second
)

// RedirectInstruction tells the handler where to send the user agent and
// which pending authorization to bind to the browser session. CookieValue is
// the signed serialization of Pending; the handler stores it verbatim.
type RedirectInstruction struct {
	AuthURL     string
	Pending     model.PendingAuthorization
	CookieValue string
}

type IConnectUsecase interface {
	BeginConnect(userID, platformID string) (*RedirectInstruction, error)
	CompleteConnect(ctx context.Context, platformID, returnedState, code, cookieValue string) (*model.PlatformConnection, error)
	Disconnect(ctx context.Context, userID, platformID string) error
	GetConnections(ctx context.Context, userID string) ([]dto.ConnectionStatus, error)
}

type connectUsecase struct {
	registry *registry.Registry
	adapters map[string]repository.ISocialPlatform
	connRepo repository.IConnection
	secret   string
}

// NewConnectUsecase wires the connect flow. secret keys the HMAC on the
// pending authorization cookie.
func NewConnectUsecase(reg *registry.Registry, adapters map[string]repository.ISocialPlatform, connRepo repository.IConnection, secret string) IConnectUsecase {
	return &connectUsecase{registry: reg, adapters: adapters, connRepo: connRepo, secret: secret}
}

// BeginConnect builds the authorization redirect for a platform and issues
// the pending authorization the callback will later consume. No connection
// record is written here.
func (u *connectUsecase) BeginConnect(userID, platformID string) (*RedirectInstruction, error) {
	if userID == "" {
		return nil, model.ErrAuthenticationRequired
	}
	cfg, err := u.registry.Lookup(platformID)
	if err != nil {
		return nil, err
	}
	pending := model.NewPendingAuthorization(platformID, userID)

	authURL, err := url.Parse(cfg.AuthURL)
	if err != nil {
		return nil, fmt.Errorf("parse auth url for %s: %w", platformID, err)
	}
	q := authURL.Query()
	q.Set("client_id", cfg.ClientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", cfg.RedirectURL)
	q.Set("scope", strings.Join(cfg.Scopes, " "))
	q.Set("state", pending.State)
	authURL.RawQuery = q.Encode()

	return &RedirectInstruction{
		AuthURL:     authURL.String(),
		Pending:     pending,
		CookieValue: pending.Encode(u.secret),
	}, nil
}

// CompleteConnect validates the returned state against the cookie-bound
// pending authorization, exchanges the code and persists the connection.
// State problems reject the flow before any call to the platform.
func (u *connectUsecase) CompleteConnect(ctx context.Context, platformID, returnedState, code, cookieValue string) (*model.PlatformConnection, error) {
	cfg, err := u.registry.Lookup(platformID)
	if err != nil {
		return nil, err
	}
	if cookieValue == "" {
		return nil, model.ErrStateExpired
	}
	pending, err := model.DecodePendingAuthorization(cookieValue, u.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrStateMismatch, err)
	}
	if pending.Expired(time.Now().UTC()) {
		return nil, model.ErrStateExpired
	}
	if pending.Platform != platformID || pending.UserID == "" {
		return nil, model.ErrStateMismatch
	}
	if subtle.ConstantTimeCompare([]byte(pending.State), []byte(returnedState)) != 1 {
		return nil, model.ErrStateMismatch
	}

	adapter, ok := u.adapters[platformID]
	if !ok {
		return nil, fmt.Errorf("%w: no adapter for %s", model.ErrUnsupportedPlatform, platformID)
	}
	// Detached from the caller: once the code is exchanged it is consumed at
	// the provider, so an aborted request must not cut the flow off between
	// the exchange and the stored connection.
	exchangeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), exchangeTimeout)
	defer cancel()
	token, err := adapter.ExchangeCode(exchangeCtx, code)
	if err != nil {
		return nil, err
	}

	conn := &model.PlatformConnection{
		UserID:       pending.UserID,
		Platform:     platformID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
		Username:     token.Username,
		Scopes:       strings.Join(cfg.Scopes, " "),
	}
	if err := u.connRepo.Upsert(exchangeCtx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Disconnect removes the stored connection and then tries to revoke the
// token at the platform. The local delete always commits first; a failed
// revocation is logged and swallowed because the caller has no way to retry
// against a record that no longer exists.
func (u *connectUsecase) Disconnect(ctx context.Context, userID, platformID string) error {
	if userID == "" {
		return model.ErrAuthenticationRequired
	}
	if !u.registry.Supported(platformID) {
		return fmt.Errorf("%w: %s", model.ErrUnsupportedPlatform, platformID)
	}

	conn, err := u.connRepo.Get(ctx, userID, platformID)
	if err != nil {
		if err == model.ErrNotConnected {
			// Nothing stored, nothing to revoke. Disconnect is idempotent.
			return nil
		}
		return err
	}

	if _, err := u.connRepo.Delete(ctx, userID, platformID); err != nil {
		return err
	}

	if adapter, ok := u.adapters[platformID]; ok && conn.AccessToken != "" {
		revokeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), revokeTimeout)
		defer cancel()
		if err := adapter.Revoke(revokeCtx, conn.AccessToken); err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{
				"platform": platformID,
				"user_id":  userID,
				"error":    err,
			}).Warn("token revocation failed; local connection already removed")
		}
	}
	return nil
}

// GetConnections reports each registered platform's connection state for the
// settings UI.
func (u *connectUsecase) GetConnections(ctx context.Context, userID string) ([]dto.ConnectionStatus, error) {
	if userID == "" {
		return nil, model.ErrAuthenticationRequired
	}
	list, err := u.connRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byPlatform := make(map[string]*model.PlatformConnection, len(list))
	for _, c := range list {
		byPlatform[c.Platform] = c
	}
	var out []dto.ConnectionStatus
	for _, cfg := range u.registry.All() {
		status := dto.ConnectionStatus{Platform: cfg.ID, DisplayName: cfg.DisplayName}
		if c, ok := byPlatform[cfg.ID]; ok {
			status.Connected = true
			status.Username = c.Username
		}
		out = append(out, status)
	}
	return out, nil
}
