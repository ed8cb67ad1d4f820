package api

import (
	"net/http"

	"github.com/evolvetech/opsdash/auth"
	rh "github.com/evolvetech/opsdash/route-handlers"
)

const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

// protectedPaths require a valid session; publicPaths bounce an
// authenticated user back to the dashboard. Matching is an exact string
// comparison on the path — there is no role or permission model.
var (
	protectedPaths = map[string]bool{
		"/dashboard": true,
		"/profile":   true,
		"/settings":  true,
	}
	publicPaths = map[string]bool{
		"/":       true,
		"/login":  true,
		"/signup": true,
	}
)

// SessionGuard gates the page routes. Unauthenticated requests to protected
// paths redirect to /login; authenticated requests to public paths redirect
// to /dashboard. Everything else passes through.
func SessionGuard(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticated := false
			if cookie, err := r.Cookie(rh.SessionCookieName); err == nil {
				if _, err := auth.ParseSessionToken(cookie.Value, secret); err == nil {
					authenticated = true
				}
			}

			path := r.URL.Path
			if !authenticated && protectedPaths[path] {
				http.Redirect(w, r, loginPath, http.StatusTemporaryRedirect)
				return
			}
			if authenticated && publicPaths[path] {
				http.Redirect(w, r, dashboardPath, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
