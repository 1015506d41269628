// Package auth issues and checks the bearer tokens of the sync server.
package auth

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"fmt"
	"time"

	"github.com/hobbybyrox/hobbyshop/internal/model"
	"github.com/hobbybyrox/hobbyshop/internal/store"
)

// Mode selects what a login hands out.
type Mode string

const (
	// ModeSecret answers every login with the shared admin secret.
	ModeSecret Mode = "secret"
	// ModeJWT answers with a signed, expiring, revocable token.
	ModeJWT Mode = "jwt"
)

// ParseMode accepts "secret", "jwt" or "" (secret).
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeSecret:
		return ModeSecret, nil
	case ModeJWT:
		return ModeJWT, nil
	}
	return "", fmt.Errorf("unknown token mode %q", s)
}

// Session is an authenticated caller. UserID and Username are only
// known in JWT mode.
type Session struct {
	UserID    int64
	Username  string
	TokenID   string
	ExpiresAt time.Time
}

// Authenticator issues and validates tokens.
type Authenticator struct {
	db     *sql.DB
	mode   Mode
	secret string
	now    func() time.Time
}

// New loads (or creates) the signing material for mode from db.
func New(ctx context.Context, db *sql.DB, mode Mode) (*Authenticator, error) {
	key := store.SettingAdminSecret
	if mode == ModeJWT {
		key = store.SettingJWTSecret
	}
	secret, err := store.GetSecret(ctx, db, key)
	if err != nil {
		return nil, err
	}
	return &Authenticator{db: db, mode: mode, secret: secret, now: time.Now}, nil
}

// Mode returns the token mode.
func (a *Authenticator) Mode() Mode {
	return a.mode
}

// Issue returns the token for a user who just proved their password.
func (a *Authenticator) Issue(u *model.User) (string, error) {
	if a.mode == ModeSecret {
		return a.secret, nil
	}
	return GenerateToken(a.secret, u.ID, u.Username, a.now())
}

// Validate checks a bearer token. Every failure wraps model.ErrAuth.
func (a *Authenticator) Validate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing token", model.ErrAuth)
	}

	if a.mode == ModeSecret {
		if subtle.ConstantTimeCompare([]byte(token), []byte(a.secret)) != 1 {
			return nil, fmt.Errorf("%w: invalid token", model.ErrAuth)
		}
		return &Session{}, nil
	}

	claims, err := ValidateToken(a.secret, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrAuth, err)
	}
	revoked, err := store.IsTokenRevoked(ctx, a.db, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", model.ErrAuth)
	}
	return &Session{
		UserID:    claims.UserID,
		Username:  claims.Username,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke invalidates the session's token. The shared secret cannot be
// revoked this way; that is a no-op.
func (a *Authenticator) Revoke(ctx context.Context, s *Session) error {
	if a.mode == ModeSecret || s == nil || s.TokenID == "" {
		return nil
	}
	if err := store.RevokeToken(ctx, a.db, s.TokenID, s.ExpiresAt); err != nil {
		return err
	}
	if _, err := store.PurgeRevokedTokens(ctx, a.db, a.now()); err != nil {
		return err
	}
	return nil
}
