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
)

const contentCollection = "contents"

type ContentRepository struct {
	db *mongo.Database
}

func NewContentRepository(client *mongo.Client, dbName string) repository.IContent {
	return &ContentRepository{db: client.Database(dbName)}
}

func (r *ContentRepository) collection() *mongo.Collection {
	return r.db.Collection(contentCollection)
}

func (r *ContentRepository) Get(ctx context.Context, contentID string) (*model.ContentItem, error) {
	var item model.ContentItem
	err := r.collection().FindOne(ctx, bson.D{{Key: "_id", Value: contentID}}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get content: %w", err)
	}
	return &item, nil
}

func (r *ContentRepository) Delete(ctx context.Context, contentID string) error {
	res, err := r.collection().DeleteOne(ctx, bson.D{{Key: "_id", Value: contentID}})
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// IncrementLikes bumps the like counter with a server-side $inc so
// concurrent likes never lose updates.
func (r *ContentRepository) IncrementLikes(ctx context.Context, contentID string) error {
	res, err := r.collection().UpdateOne(ctx,
		bson.D{{Key: "_id", Value: contentID}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "likes", Value: int64(1)}}}},
	)
	if err != nil {
		return fmt.Errorf("increment likes: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r *ContentRepository) SetPlatformStatus(ctx context.Context, contentID string, status map[string]string) error {
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	for platform, s := range status {
		set = append(set, bson.E{Key: "platformStatus." + platform, Value: s})
	}
	res, err := r.collection().UpdateOne(ctx,
		bson.D{{Key: "_id", Value: contentID}},
		bson.D{{Key: "$set", Value: set}},
	)
	if err != nil {
		return fmt.Errorf("set platform status: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}
