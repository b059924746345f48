package middleware

import (
	"net/http"
	"strings"

	apperrors "travelpartner/pkg/errors"
	"travelpartner/pkg/identity"
	"travelpartner/pkg/logger"
)

type TokenVerifier interface {
	Verify(token string) (*identity.Identity, error)
}

// Authenticate attaches the caller identity when a bearer token is present.
// Anonymous requests pass through; handlers that need a caller call
// identity.Require.
func Authenticate(verifier TokenVerifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				_ = apperrors.WriteError(w, apperrors.Unauthorized("Authorization header must be a bearer token"))
				return
			}

			id, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				log.Warn("Rejected identity token",
					"request_id", logger.RequestID(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				_ = apperrors.WriteError(w, apperrors.Unauthorized("Invalid or expired session"))
				return
			}

			next.ServeHTTP(w, r.WithContext(identity.WithIdentity(r.Context(), id)))
		})
	}
}
