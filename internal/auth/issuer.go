package auth

import (
	"context"
	"time"
)

// SessionCreator is the slice of the session store the issuer needs.
type SessionCreator interface {
	Create(ctx context.Context, userID uint64, platform, browser, requestIP string) (string, error)
}

// TokenPair is an access/refresh pair bound to one session. Revoking that
// session kills both tokens at once.
type TokenPair struct {
	SessionID  string
	Access     string
	AccessExp  time.Time
	Refresh    string
	RefreshExp time.Time
}

// Issuer creates sessions and the token pairs bound to them.
type Issuer struct {
	codec      *Codec
	sessions   SessionCreator
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewIssuer(codec *Codec, sessions SessionCreator, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{codec: codec, sessions: sessions, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue records one new session carrying the client environment and signs
// an access and a refresh token that both embed the session id. One session
// row per call, shared by the pair.
func (i *Issuer) Issue(ctx context.Context, userID uint64, env ClientEnvironment) (TokenPair, error) {
	parsed := parseEnvironment(env)
	sessionID, err := i.sessions.Create(ctx, userID, parsed.Platform, parsed.Browser, parsed.RequestIP)
	if err != nil {
		return TokenPair{}, err
	}

	now := time.Now().UTC()
	pair := TokenPair{
		SessionID:  sessionID,
		AccessExp:  now.Add(i.accessTTL),
		RefreshExp: now.Add(i.refreshTTL),
	}
	if pair.Access, err = i.codec.Encode(userID, sessionID, TokenAccess, pair.AccessExp); err != nil {
		return TokenPair{}, err
	}
	if pair.Refresh, err = i.codec.Encode(userID, sessionID, TokenRefresh, pair.RefreshExp); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}
