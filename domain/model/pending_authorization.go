package model

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PendingAuthTTL is how long a started connect flow stays valid. The cookie
// carrying the pending authorization uses the same TTL as its Max-Age.
const PendingAuthTTL = 10 * time.Minute

// PendingAuthorization is the ephemeral state of a started OAuth connect flow.
// It lives only in the browser cookie: the server never keeps a registry of
// outstanding flows, so expiry is checked explicitly when the callback
// consumes the value. UserID rides along because the provider redirect
// carries no bearer credential.
type PendingAuthorization struct {
	Platform string
	UserID   string
	State    string
	IssuedAt time.Time
}

// NewPendingAuthorization issues a fresh pending authorization with a
// crypto-random 256-bit state token.
func NewPendingAuthorization(platform, userID string) PendingAuthorization {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return PendingAuthorization{
		Platform: platform,
		UserID:   userID,
		State:    base64.RawURLEncoding.EncodeToString(b),
		IssuedAt: time.Now().UTC(),
	}
}

// Encode serializes the pending authorization into a cookie-safe value and
// appends an HMAC-SHA256 tag keyed with secret. The cookie is the only place
// the flow state lives, so without the tag a client could mint a value naming
// any user id and link a connection to someone else's account.
func (p PendingAuthorization) Encode(secret string) string {
	payload := fmt.Sprintf("%s.%s.%s.%d", p.Platform, p.UserID, p.State, p.IssuedAt.Unix())
	return payload + "." + pendingAuthTag(payload, secret)
}

// DecodePendingAuthorization parses a cookie value produced by Encode,
// rejecting values whose tag does not verify under secret.
func DecodePendingAuthorization(v, secret string) (PendingAuthorization, error) {
	parts := strings.Split(v, ".")
	if len(parts) != 5 {
		return PendingAuthorization{}, fmt.Errorf("malformed pending authorization value")
	}
	payload := strings.Join(parts[:4], ".")
	if !hmac.Equal([]byte(pendingAuthTag(payload, secret)), []byte(parts[4])) {
		return PendingAuthorization{}, fmt.Errorf("pending authorization signature mismatch")
	}
	issued, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return PendingAuthorization{}, fmt.Errorf("malformed pending authorization timestamp: %w", err)
	}
	return PendingAuthorization{
		Platform: parts[0],
		UserID:   parts[1],
		State:    parts[2],
		IssuedAt: time.Unix(issued, 0).UTC(),
	}, nil
}

func pendingAuthTag(payload, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Expired reports whether the flow is past its TTL at the given time.
func (p PendingAuthorization) Expired(now time.Time) bool {
	return now.After(p.IssuedAt.Add(PendingAuthTTL))
}

// CookieName returns the per-platform cookie the pending authorization is
// bound to.
func (p PendingAuthorization) CookieName() string {
	return PendingAuthCookieName(p.Platform)
}

func PendingAuthCookieName(platform string) string {
	return "connect_state_" + platform
}
