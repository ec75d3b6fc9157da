package daemon

import (
	"net/http"
	"strings"

	"crb/internal/auth"
)

const (
	// AuthHeader is the header carrying the bearer token.
	AuthHeader = "Authorization"

	// AuthScheme is the expected authorization scheme prefix.
	AuthScheme = "Bearer "
)

// withAuth wraps a handler with bearer-token verification against the
// configured hash. With no hash configured, requests pass with a warning;
// a daemon bound to loopback without a token is a deliberate dev setup.
func (d *Daemon) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d.config.TokenHash == "" {
			d.logger.Warn("API request served without auth; no token hash configured", map[string]interface{}{
				"path": r.URL.Path,
			})
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(AuthHeader)
		if header == "" {
			d.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing Authorization header")
			return
		}
		if !strings.HasPrefix(header, AuthScheme) {
			d.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid Authorization scheme, expected Bearer")
			return
		}

		token := strings.TrimPrefix(header, AuthScheme)
		if !auth.VerifyToken(token, d.config.TokenHash) {
			d.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}
