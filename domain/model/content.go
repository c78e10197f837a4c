package model

import "time"

// ContentItem is a piece of user content that can be published to one or
// more platforms. MediaRef points at the uploaded object in the media
// bucket. Likes is mutated only via the repository's atomic increment.
type ContentItem struct {
	ID             string            `json:"id" bson:"_id"`
	UserID         string            `json:"user_id" bson:"userId"`
	Title          string            `json:"title" bson:"title"`
	Description    string            `json:"description,omitempty" bson:"description,omitempty"`
	MediaRef       string            `json:"media_ref" bson:"mediaRef"`
	PlatformStatus map[string]string `json:"platform_status,omitempty" bson:"platformStatus,omitempty"`
	Likes          int64             `json:"likes" bson:"likes"`
	CreatedAt      time.Time         `json:"created_at" bson:"createdAt"`
	UpdatedAt      time.Time         `json:"updated_at" bson:"updatedAt"`
}
