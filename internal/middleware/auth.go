package middleware

import (
	"net/http"
	"strings"

	"github.com/soluo/mental-load/internal/auth"
	"github.com/soluo/mental-load/internal/store"
)

const SessionCookieName = "mentalload_session"

// RequireAuth authenticates a request from either the session cookie or
// an Authorization bearer token, resolves the caller's household
// membership, and populates AuthContext.
func RequireAuth(sessions *store.SessionStore, users *store.UserStore, members *store.MemberStore, jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ac, ok := authenticate(r, sessions, users, jwtManager)
			if !ok {
				writeUnauthorized(w)
				return
			}

			if member, err := members.GetByUser(ac.UserID); err == nil && member != nil {
				ac.MemberID = member.ID
				ac.HouseholdID = member.HouseholdID
			}

			ctx := auth.WithAuth(r.Context(), ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, sessions *store.SessionStore, users *store.UserStore, jwtManager *auth.JWTManager) (auth.AuthContext, bool) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		sess, err := sessions.GetByToken(cookie.Value)
		if err == nil && sess != nil {
			user, err := users.GetByID(sess.UserID)
			if err == nil && user != nil {
				return auth.AuthContext{UserID: user.ID, Email: user.Email}, true
			}
		}
	}

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		claims, err := jwtManager.Validate(strings.TrimPrefix(header, "Bearer "))
		if err == nil {
			return auth.AuthContext{UserID: claims.UserID, Email: claims.Email}, true
		}
	}

	return auth.AuthContext{}, false
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"not authenticated"}`))
}
