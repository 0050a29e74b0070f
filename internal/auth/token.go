package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType distinguishes the two halves of an issued pair. Both carry the
// same session id; the type only controls where a token may be presented.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// Claims is the decoded content of a token: who it belongs to, which
// session it is bound to, and when it stops being structurally valid.
type Claims struct {
	UserID    uint64
	SessionID string
	Type      TokenType
	ExpiresAt time.Time
}

// Codec signs and verifies HS256 JWTs. It knows nothing about session
// liveness; Decode succeeding is necessary but never sufficient for a
// request to be authenticated.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec { return &Codec{secret: []byte(secret)} }

// Encode builds and signs a token embedding the user id (sub), session id
// (jti), token type (typ) and expiry (exp).
func (c *Codec) Encode(userID uint64, sessionID string, typ TokenType, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(userID, 10),
		"jti": sessionID,
		"typ": string(typ),
		"exp": expiresAt.UTC().Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Decode verifies the signature and expiry and returns the embedded claims.
// Any failure, including an unexpected signing method, maps to
// ErrInvalidToken.
func (c *Codec) Decode(raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	})
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{}
	switch sub := mc["sub"].(type) {
	case string:
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return Claims{}, ErrInvalidToken
		}
		out.UserID = id
	case float64: // tolerate tokens that carried sub as a JSON number
		out.UserID = uint64(sub)
	default:
		return Claims{}, ErrInvalidToken
	}

	jti, _ := mc["jti"].(string)
	if jti == "" {
		return Claims{}, ErrInvalidToken
	}
	out.SessionID = jti

	typ, _ := mc["typ"].(string)
	switch TokenType(typ) {
	case TokenAccess, TokenRefresh:
		out.Type = TokenType(typ)
	default:
		return Claims{}, ErrInvalidToken
	}

	if exp, ok := mc["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return out, nil
}
