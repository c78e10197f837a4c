package model

import "time"

// PlatformConfig is the static description of one supported platform.
// ID is the only lookup key and must be unique across the registry.
type PlatformConfig struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"display_name"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"-"`
	AuthURL      string   `json:"auth_url"`
	Scopes       []string `json:"scopes"`
	RedirectURL  string   `json:"redirect_url"`
}

// PlatformToken is the result of exchanging an authorization code with a
// platform. RefreshToken and ExpiresAt are optional; some platforms issue
// long-lived tokens with neither.
type PlatformToken struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	Username     string     `json:"username,omitempty"`
}
