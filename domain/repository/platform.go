package repository

import (
	"context"

	"social-hub/domain/model"
)

// PublishContent is what an adapter needs to create a post: the stored media
// reference plus the caption fields taken from the content item.
type PublishContent struct {
	MediaRef    string
	Title       string
	Description string
}

// ISocialPlatform is the uniform capability interface every platform adapter
// implements. Each adapter owns its endpoint URLs and wire format; the
// orchestrator selects adapters by platform identifier and treats them as
// interchangeable.
type ISocialPlatform interface {
	// ExchangeCode trades an authorization code for tokens.
	ExchangeCode(ctx context.Context, code string) (*model.PlatformToken, error)
	// Revoke invalidates an access token at the platform.
	Revoke(ctx context.Context, accessToken string) error
	// Publish posts content with the stored credential and returns the
	// platform's id for the created post.
	Publish(ctx context.Context, accessToken string, content PublishContent) (string, error)
}
