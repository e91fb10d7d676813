package firebase

import (
	"context"
	"errors"
	"time"
)

// ErrNoCredential is returned by requests made before Authenticate succeeded.
var ErrNoCredential = errors.New("firebase: no access token, call Authenticate first")

// TOKEN_EXPIRY_SKEW renews tokens slightly before they expire.
const TOKEN_EXPIRY_SKEW = time.Minute

// Credential is a bearer token and the instant it stops being accepted.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Valid reports whether the token can still be used at now.
func (c Credential) Valid(now time.Time) bool {
	return c.Token != "" && now.Add(TOKEN_EXPIRY_SKEW).Before(c.ExpiresAt)
}

// TokenSource obtains a fresh credential.
type TokenSource interface {
	Exchange(ctx context.Context, now time.Time) (Credential, error)
}

// Refresh returns old while it is valid and otherwise a new credential from source.
func Refresh(ctx context.Context, old Credential, now time.Time, source TokenSource) (Credential, error) {
	if old.Valid(now) {
		return old, nil
	}
	return source.Exchange(ctx, now)
}

// StaticTokenSource hands out a fixed token, e.g. a database secret.
type StaticTokenSource struct {
	Token string
	TTL   time.Duration
}

func (s StaticTokenSource) Exchange(ctx context.Context, now time.Time) (Credential, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return Credential{Token: s.Token, ExpiresAt: now.Add(ttl)}, nil
}
