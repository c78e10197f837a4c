package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"social-hub/domain/model"
	"social-hub/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const connectionCollection = "platform_connections"

// ConnectionRepository stores one PlatformConnection document per
// (userId, platform). The compound key is enforced by the upsert filter.
type ConnectionRepository struct {
	db *mongo.Database
}

func NewConnectionRepository(client *mongo.Client, dbName string) repository.IConnection {
	return &ConnectionRepository{db: client.Database(dbName)}
}

func (r *ConnectionRepository) collection() *mongo.Collection {
	return r.db.Collection(connectionCollection)
}

func (r *ConnectionRepository) Get(ctx context.Context, userID, platform string) (*model.PlatformConnection, error) {
	var conn model.PlatformConnection
	err := r.collection().FindOne(ctx, bson.D{
		{Key: "userId", Value: userID},
		{Key: "platform", Value: platform},
	}).Decode(&conn)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotConnected
		}
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return &conn, nil
}

func (r *ConnectionRepository) Upsert(ctx context.Context, conn *model.PlatformConnection) error {
	now := time.Now().UTC()
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = now
	}
	conn.UpdatedAt = now

	filter := bson.D{
		{Key: "userId", Value: conn.UserID},
		{Key: "platform", Value: conn.Platform},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "accessToken", Value: conn.AccessToken},
			{Key: "refreshToken", Value: conn.RefreshToken},
			{Key: "expiresAt", Value: conn.ExpiresAt},
			{Key: "username", Value: conn.Username},
			{Key: "scopes", Value: conn.Scopes},
			{Key: "updatedAt", Value: conn.UpdatedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "userId", Value: conn.UserID},
			{Key: "platform", Value: conn.Platform},
			{Key: "createdAt", Value: conn.CreatedAt},
		}},
	}
	_, err := r.collection().UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert connection: %w", err)
	}
	return nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, userID, platform string) (bool, error) {
	res, err := r.collection().DeleteOne(ctx, bson.D{
		{Key: "userId", Value: userID},
		{Key: "platform", Value: platform},
	})
	if err != nil {
		return false, fmt.Errorf("delete connection: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (r *ConnectionRepository) ListByUser(ctx context.Context, userID string) ([]*model.PlatformConnection, error) {
	cursor, err := r.collection().Find(ctx, bson.D{{Key: "userId", Value: userID}})
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer cursor.Close(ctx)

	var list []*model.PlatformConnection
	for cursor.Next(ctx) {
		var conn model.PlatformConnection
		if err := cursor.Decode(&conn); err != nil {
			return nil, fmt.Errorf("decode connection: %w", err)
		}
		list = append(list, &conn)
	}
	return list, cursor.Err()
}
