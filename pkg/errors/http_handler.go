package errors

import (
	"encoding/json"
	"net/http"
)

// WriteError renders err as an ErrorResponse using the AppError status.
// Non-AppError values are reported as internal errors without leaking their text.
func WriteError(w http.ResponseWriter, err error) error {
	appErr := AsAppError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	return json.NewEncoder(w).Encode(appErr.Response())
}
