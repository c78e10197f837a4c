package repository

import (
	"context"

	"social-hub/domain/model"
)

// IConnection persists one PlatformConnection per (user, platform).
// Get returns model.ErrNotConnected when no record exists. Delete is
// idempotent: deleting an absent record is not an error and reports
// deleted=false.
type IConnection interface {
	Get(ctx context.Context, userID, platform string) (*model.PlatformConnection, error)
	Upsert(ctx context.Context, conn *model.PlatformConnection) error
	Delete(ctx context.Context, userID, platform string) (deleted bool, err error)
	ListByUser(ctx context.Context, userID string) ([]*model.PlatformConnection, error)
}
