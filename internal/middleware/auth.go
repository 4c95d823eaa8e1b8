package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/transitlk/notifier/internal/auth"
	"github.com/transitlk/notifier/internal/model"
)

// RequireAdmin verifies the request token and requires the admin user type.
// Error responses mirror the shape the admin frontend expects.
func RequireAdmin(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := verifier.VerifyRequest(r)
			if err != nil {
				if errors.Is(err, auth.ErrNoToken) {
					writeAuthError(w, http.StatusUnauthorized, "No authentication token, access denied", "NO_TOKEN")
					return
				}
				writeAuthError(w, http.StatusUnauthorized, "Token is invalid", "TOKEN_INVALID")
				return
			}

			if p.UserType != model.UserTypeAdmin {
				writeAuthError(w, http.StatusForbidden, "Not authorized", "NOT_ADMIN")
				return
			}

			ctx := auth.WithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message, "code": code})
}
