package model

import "time"

// Maximum stored lengths for session columns. Values arriving from the
// client environment are clipped to these before persistence.
const (
	SessionEnvParamMaxLen  = 20 // platform, browser
	SessionRequestIPMaxLen = 40 // fits a full IPv6 textual address
)

// Session models an entry in the `user_session` table. One row exists per
// issued token pair; the row's existence is what keeps the pair valid, so
// revocation is simply deletion. A session id, once created, is immutable.
//
// Fields:
//  ID        – opaque UUID primary key, embedded in tokens as the jti claim.
//  UserID    – owner of the session.
//  Platform  – client OS name at issuance, clipped to 20 chars.
//  Browser   – client browser name at issuance, clipped to 20 chars.
//  RequestIP – originating address at issuance, clipped to 40 chars.
//  CreatedAt – timestamp of creation.
type Session struct {
	ID        string    // user_session.id
	UserID    uint64    // user_session.user_id
	Platform  string    // user_session.platform
	Browser   string    // user_session.browser
	RequestIP string    // user_session.request_ip
	CreatedAt time.Time // user_session.created_at
}
