package model

import "time"

// PlatformConnection stores the credential linking one application user to
// one platform account. At most one connection exists per (user, platform);
// the repository enforces this with an upsert keyed on both fields.
type PlatformConnection struct {
	UserID       string     `json:"user_id" bson:"userId"`
	Platform     string     `json:"platform" bson:"platform"`
	AccessToken  string     `json:"-" bson:"accessToken"`
	RefreshToken string     `json:"-" bson:"refreshToken,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" bson:"expiresAt,omitempty"`
	Username     string     `json:"username,omitempty" bson:"username,omitempty"`
	Scopes       string     `json:"scopes,omitempty" bson:"scopes,omitempty"`
	CreatedAt    time.Time  `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updatedAt"`
}
