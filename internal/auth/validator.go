package auth

import (
	"context"

	"github.com/iliyamo/user-access/internal/model"
)

// SessionChecker is the slice of the session store the validator needs.
type SessionChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// GrantSource loads a user's current role grants.
type GrantSource interface {
	GrantsForUser(ctx context.Context, userID uint64) ([]model.RoleGrant, error)
}

// Validator is the security-critical path: every request goes through
// Validate, and cryptographic validity alone is never enough: the session
// row must still exist.
type Validator struct {
	codec    *Codec
	sessions SessionChecker
	roles    GrantSource
}

func NewValidator(codec *Codec, sessions SessionChecker, roles GrantSource) *Validator {
	return &Validator{codec: codec, sessions: sessions, roles: roles}
}

// Validate decodes the token, requires it to be of the wanted type,
// confirms the embedded session is still live, loads the user's grants and
// returns the resulting identity.
//
// Decode failures (signature, malformation, expiry, wrong type) return
// ErrInvalidToken. A structurally valid token whose session row is gone
// returns ErrSessionRevoked: this is what makes logout and logout-all
// effective even though the token stays cryptographically valid until its
// natural expiry.
func (v *Validator) Validate(ctx context.Context, raw string, want TokenType) (Identity, error) {
	claims, err := v.codec.Decode(raw)
	if err != nil {
		return Identity{}, err
	}
	if claims.Type != want {
		return Identity{}, ErrInvalidToken
	}

	live, err := v.sessions.Exists(ctx, claims.SessionID)
	if err != nil {
		return Identity{}, err
	}
	if !live {
		return Identity{}, ErrSessionRevoked
	}

	grants, err := v.roles.GrantsForUser(ctx, claims.UserID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.UserID, SessionID: claims.SessionID, Grants: grants}, nil
}
