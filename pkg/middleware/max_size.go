package middleware

import (
	"net/http"

	apperrors "innkeep/pkg/errors"
)

// MaxRequestSize caps request bodies. Declared oversize bodies are rejected
// up front; undeclared ones fail on read through http.MaxBytesReader.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = apperrors.WriteError(w, apperrors.TooLarge("Request body too large"))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
