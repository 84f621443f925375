package middleware

import (
	"net/http"
	"strings"

	"innkeep/pkg/auth"
	apperrors "innkeep/pkg/errors"
	"innkeep/pkg/logger"
)

type TokenParser interface {
	Parse(raw string) (auth.Principal, error)
}

// Authenticate attaches the bearer principal to the request context.
// Requests without a token proceed as guests; a bad token is rejected.
func Authenticate(tokens TokenParser, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), auth.Guest())))
				return
			}

			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(raw) == "" {
				_ = apperrors.WriteError(w, apperrors.Unauthorized("Authorization header must be a Bearer token"))
				return
			}

			principal, err := tokens.Parse(strings.TrimSpace(raw))
			if err != nil {
				log.Warn("Rejected bearer token",
					"request_id", RequestID(r.Context()),
					"error", err,
					"path", r.URL.Path,
				)
				_ = apperrors.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}
