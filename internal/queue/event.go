// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// AuthQueueName is the durable queue all auth domain events go through.
// Consumers switch on the Type field of the envelope.
const AuthQueueName = "auth.events"

// Event envelope types.
const (
	TypeUserRegistered  = "user.registered"
	TypeSessionsRevoked = "sessions.revoked"
)

// UserRegisteredEvent is published after a successful registration. It
// carries enough for downstream consumers to notify or audit without
// querying the primary database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Platform     string `json:"platform"`
	Browser      string `json:"browser"`
	RequestIP    string `json:"request_ip"`
	RegisteredAt string `json:"registered_at"`
}

// SessionsRevokedEvent is published when one or more sessions are revoked
// outside their natural expiry (logout, logout-all).
type SessionsRevokedEvent struct {
	UserID    uint64 `json:"user_id"`
	Revoked   int64  `json:"revoked"`
	Reason    string `json:"reason"` // "logout" | "logout_all" | "refresh_rotation"
	RevokedAt string `json:"revoked_at"`
}

// Envelope wraps a payload with its type for the shared auth queue.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
