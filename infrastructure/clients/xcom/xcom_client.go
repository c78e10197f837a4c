package xcom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"social-hub/domain/model"
	"social-hub/domain/repository"
)

// AuthorizeURL is the X (Twitter) OAuth2 consent endpoint, exported for the
// platform registry.
const AuthorizeURL = "https://x.com/i/oauth2/authorize"

const (
	tokenURL  = "https://api.x.com/2/oauth2/token"
	revokeURL = "https://api.x.com/2/oauth2/revoke"
	tweetsURL = "https://api.x.com/2/tweets"
	meURL     = "https://api.x.com/2/users/me"
)

var DefaultScopes = []string{"tweet.read", "tweet.write", "users.read", "offline.access"}

// Client is the X platform adapter using the v2 API.
type Client struct {
	oauthConfig *oauth2.Config
	httpClient  *http.Client
	mediaURL    func(ref string) string
}

func NewClient(cfg model.PlatformConfig, mediaURL func(ref string) string) repository.ISocialPlatform {
	return &Client{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  AuthorizeURL,
				TokenURL: tokenURL,
			},
		},
		httpClient: &http.Client{Timeout: 15 * time.Second},
		mediaURL:   mediaURL,
	}
}

func (c *Client) ExchangeCode(ctx context.Context, code string) (*model.PlatformToken, error) {
	token, err := c.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrTokenExchangeFailed, err)
	}
	out := &model.PlatformToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		out.ExpiresAt = &expiry
	}
	if handle, err := c.handle(ctx, token.AccessToken); err == nil {
		out.Username = handle
	}
	return out, nil
}

func (c *Client) handle(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("users/me returned %d", resp.StatusCode)
	}
	var me struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		return "", err
	}
	return me.Data.Username, nil
}

func (c *Client) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("token", accessToken)
	form.Set("client_id", c.oauthConfig.ClientID)
	form.Set("token_type_hint", "access_token")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
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

// Publish creates a tweet carrying the title and a link to the media.
func (c *Client) Publish(ctx context.Context, accessToken string, content repository.PublishContent) (string, error) {
	text := content.Title + " " + c.mediaURL(content.MediaRef)
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tweetsURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrExternalCallFailed, err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: tweets returned %d: %s", model.ErrExternalCallFailed, resp.StatusCode, string(body))
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%w: parse tweet id: %v", model.ErrExternalCallFailed, err)
	}
	return created.Data.ID, nil
}
