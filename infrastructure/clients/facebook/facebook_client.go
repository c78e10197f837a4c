package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"

	"social-hub/domain/model"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
)

// AuthorizeURL is the Facebook OAuth dialog, exported for the platform
// registry.
const AuthorizeURL = "https://www.facebook.com/v19.0/dialog/oauth"

const graphBase = "https://graph.facebook.com/v19.0"

var DefaultScopes = []string{"public_profile", "publish_video", "pages_show_list"}

// Client is the Facebook platform adapter, talking to the Graph API
// directly.
type Client struct {
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
	mediaURL     func(ref string) string
}

func NewClient(cfg model.PlatformConfig, mediaURL func(ref string) string) repository.ISocialPlatform {
	return &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		redirectURL:  cfg.RedirectURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		mediaURL:     mediaURL,
	}
}

type exchangeParams struct {
	ClientID     string `url:"client_id"`
	ClientSecret string `url:"client_secret"`
	RedirectURI  string `url:"redirect_uri"`
	Code         string `url:"code"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*model.PlatformToken, error) {
	params, err := query.Values(exchangeParams{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RedirectURI:  c.redirectURL,
		Code:         code,
	})
	if err != nil {
		return nil, err
	}
	body, status, err := c.get(ctx, graphBase+"/oauth/access_token?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrTokenExchangeFailed, err)
	}
	if status != http.StatusOK {
		logger.GetLogger().WithField("body", string(body)).Warn("facebook token exchange rejected")
		return nil, fmt.Errorf("%w: graph returned %d", model.ErrTokenExchangeFailed, status)
	}
	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("%w: parse token: %v", model.ErrTokenExchangeFailed, err)
	}

	out := &model.PlatformToken{AccessToken: tok.AccessToken}
	if tok.ExpiresIn > 0 {
		expiry := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second).UTC()
		out.ExpiresAt = &expiry
	}
	if name, err := c.profileName(ctx, tok.AccessToken); err == nil {
		out.Username = name
	}
	return out, nil
}

func (c *Client) profileName(ctx context.Context, accessToken string) (string, error) {
	body, status, err := c.get(ctx, fmt.Sprintf("%s/me?fields=name&access_token=%s", graphBase, url.QueryEscape(accessToken)))
	if err != nil || status != http.StatusOK {
		return "", fmt.Errorf("profile fetch failed")
	}
	var me struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return "", err
	}
	return me.Name, nil
}

// Revoke deletes the app's permissions for the user, invalidating the token.
func (c *Client) Revoke(ctx context.Context, accessToken string) error {
	u := fmt.Sprintf("%s/me/permissions?access_token=%s", graphBase, url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrExternalCallFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: revoke returned %d", model.ErrExternalCallFailed, resp.StatusCode)
	}
	return nil
}

// Publish creates a feed post linking the media so Facebook renders a
// preview card.
func (c *Client) Publish(ctx context.Context, accessToken string, content repository.PublishContent) (string, error) {
	link := c.mediaURL(content.MediaRef)
	message := content.Title
	if content.Description != "" {
		message = message + "\n\n" + content.Description
	}
	form := url.Values{}
	form.Set("message", message)
	form.Set("link", link)
	form.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphBase+"/me/feed", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrExternalCallFailed, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.GetLogger().WithField("body", string(body)).Warn("facebook post rejected")
		return "", fmt.Errorf("%w: graph returned %d", model.ErrExternalCallFailed, resp.StatusCode)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%w: parse post id: %v", model.ErrExternalCallFailed, err)
	}
	return created.ID, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return body, resp.StatusCode, err
}
