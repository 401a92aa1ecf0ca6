package validators

import (
	"net/http"
	"strings"
)

// SessionToken extracts the opaque session credential from the request:
// the session cookie first, then a bearer Authorization header. An empty
// string means no credential was presented.
func SessionToken(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
