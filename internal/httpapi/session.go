package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const sessionCookie = "bookstore_session"

type contextKey string

const sessionKey contextKey = "sessionID"

// WithSession assigns every request a session id carried in a cookie.
// The cart for that id lives only in memory; when the process restarts the
// cookie points at a fresh, empty cart, which is the intended lifetime.
// Only cookies holding a well-formed uuid are honored, so arbitrary
// client-chosen strings never become cart keys.
func WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if c, err := r.Cookie(sessionCookie); err == nil && uuid.Validate(c.Value) == nil {
			sessionID = c.Value
		} else {
			sessionID = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookie,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), sessionKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	if v, ok := r.Context().Value(sessionKey).(string); ok {
		return v
	}
	return ""
}
