package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"social-hub/domain/model"
	"social-hub/domain/repository"
)

// AuthorizeURL is Google's OAuth consent endpoint, exported for the platform
// registry.
const AuthorizeURL = "https://accounts.google.com/o/oauth2/auth"

const revokeURL = "https://oauth2.googleapis.com/revoke"

// DefaultScopes are the scopes requested when connecting a YouTube account.
var DefaultScopes = []string{
	youtube.YoutubeScope,
	youtube.YoutubeUploadScope,
	youtube.YoutubeForceSslScope,
}

// Client is the YouTube platform adapter.
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
			Endpoint:     google.Endpoint,
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
	// Channel title doubles as the connected account's display handle. Failure
	// here is not fatal; the connection just has no username.
	if title, err := c.channelTitle(ctx, token); err == nil {
		out.Username = title
	}
	return out, nil
}

func (c *Client) channelTitle(ctx context.Context, token *oauth2.Token) (string, error) {
	service, err := youtube.NewService(ctx, option.WithHTTPClient(c.oauthConfig.Client(ctx, token)))
	if err != nil {
		return "", err
	}
	resp, err := service.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("no channel for account")
	}
	return resp.Items[0].Snippet.Title, nil
}

func (c *Client) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{}
	form.Set("token", accessToken)
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

// Publish uploads the media object as an unlisted video on the connected
// channel and returns the new video id.
func (c *Client) Publish(ctx context.Context, accessToken string, content repository.PublishContent) (string, error) {
	token := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	service, err := youtube.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))))
	if err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrExternalCallFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.mediaURL(content.MediaRef), nil)
	if err != nil {
		return "", err
	}
	media, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch media: %v", model.ErrExternalCallFailed, err)
	}
	defer media.Body.Close()
	if media.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: fetch media returned %d", model.ErrExternalCallFailed, media.StatusCode)
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       content.Title,
			Description: content.Description,
		},
		Status: &youtube.VideoStatus{PrivacyStatus: "unlisted"},
	}
	inserted, err := service.Videos.Insert([]string{"snippet", "status"}, video).
		Media(media.Body).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("%w: upload video: %v", model.ErrExternalCallFailed, err)
	}
	return inserted.Id, nil
}
