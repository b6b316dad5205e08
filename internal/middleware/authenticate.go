package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/videotube/backend/internal/logging"
	"github.com/videotube/backend/internal/models"
)

type authCtxKey string

const currentUserKey authCtxKey = "currentUser"

// TokenVerifier validates an access token and returns the subject user id.
type TokenVerifier interface {
	Verify(accessToken string) (string, error)
}

// UserLoader resolves a user record by identifier.
type UserLoader interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// CurrentUser returns the authenticated user stored by Authenticate, if any.
func CurrentUser(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(currentUserKey).(models.User)
	return user, ok
}

// WithCurrentUser stores an authenticated user on the context. Exposed for
// handler tests that bypass the middleware chain.
func WithCurrentUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// Authenticate verifies the bearer token (Authorization header or accessToken
// cookie), loads the corresponding user and stores it on the request context.
// Requests without a valid token are rejected with 401.
func Authenticate(verifier TokenVerifier, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				rejectUnauthorized(w, "missing access token")
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				rejectUnauthorized(w, "invalid access token")
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				logging.FromContext(r.Context()).Warn("token subject not found", "user_id", userID)
				rejectUnauthorized(w, "invalid access token")
				return
			}

			ctx := WithCurrentUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := r.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}

func rejectUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"statusCode": http.StatusUnauthorized,
		"data":       nil,
		"message":    message,
	})
}
