package repository

import (
	"context"

	"social-hub/domain/model"
)

// IContent persists content metadata. Get and Delete return
// model.ErrNotFound for absent records. IncrementLikes must be an atomic
// store-level increment, never a read-modify-write.
type IContent interface {
	Get(ctx context.Context, contentID string) (*model.ContentItem, error)
	Delete(ctx context.Context, contentID string) error
	IncrementLikes(ctx context.Context, contentID string) error
	SetPlatformStatus(ctx context.Context, contentID string, status map[string]string) error
}

// IMediaStore is the object store holding uploaded media. Delete must treat
// an already-absent object as success.
type IMediaStore interface {
	Delete(ctx context.Context, mediaRef string) error
}
