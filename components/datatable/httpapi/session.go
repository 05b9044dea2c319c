package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// SessionCookie carries the table session id between requests.
	SessionCookie = "table_session"
	// SessionHeader overrides the cookie, for API clients.
	SessionHeader = "X-Table-Session"
)

type sessionKey struct{}

// SessionMiddleware resolves the table session from the header or cookie and issues a
// new one when neither is present.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := r.Header.Get(SessionHeader)
		if session == "" {
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				session = cookie.Value
			}
		}
		if session == "" {
			session = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    session,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(SessionHeader, session)
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// WithSession stores session on ctx.
func WithSession(ctx context.Context, session string) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFrom returns the session stored by SessionMiddleware.
func SessionFrom(ctx context.Context) string {
	session, _ := ctx.Value(sessionKey{}).(string)
	return session
}
