// Package auth implements token issuance and validation bound to revocable
// sessions, plus role-based authorization over ranked permissions.
package auth

import "errors"

// ErrInvalidToken covers malformed, tampered and expired tokens. The check
// is purely cryptographic/structural; it never consults the session store.
// Terminal: retrying the same token cannot succeed.
var ErrInvalidToken = errors.New("invalid token")

// ErrSessionRevoked is returned when a token carries a valid signature but
// its session row no longer exists (logout, logout-all or administrative
// revocation). Handlers map it to 401 like ErrInvalidToken, but the two are
// kept distinct because only this one means "the token used to work".
var ErrSessionRevoked = errors.New("session revoked or unknown")

// ErrForbidden is returned when an authenticated identity lacks the role
// rank required for a section. Distinct from the 401 family: the caller is
// known, just not allowed. Handlers map it to 403.
var ErrForbidden = errors.New("insufficient role")
