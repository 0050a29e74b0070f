package auth

import (
	ua "github.com/mileusna/useragent"

	"github.com/iliyamo/user-access/internal/model"
)

// ClientEnvironment carries the raw request attributes recorded against a
// new session. The boundary layer fills it from the User-Agent header and
// the X-Forwarded-For header (or the peer address when absent).
type ClientEnvironment struct {
	UserAgent string
	RequestIP string
}

// parsedEnvironment is the stored form: platform and browser names derived
// from the user-agent string, all fields clipped to their column widths.
type parsedEnvironment struct {
	Platform  string
	Browser   string
	RequestIP string
}

func parseEnvironment(env ClientEnvironment) parsedEnvironment {
	res := ua.Parse(env.UserAgent)
	return parsedEnvironment{
		Platform:  clip(res.OS, model.SessionEnvParamMaxLen),
		Browser:   clip(res.Name, model.SessionEnvParamMaxLen),
		RequestIP: clip(env.RequestIP, model.SessionRequestIPMaxLen),
	}
}

func clip(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
