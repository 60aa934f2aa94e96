package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

// UserError is an error type that is used to represent
// an error that should be displayed to the user.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

var _ error = (*UserError)(nil)

func userError(message string, err error) *UserError {
	return &UserError{Message: message, Err: err}
}

// writeError replies 400 with the message of a UserError and 500 with a
// generic message for anything else.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var userErr *UserError
	if errors.As(err, &userErr) {
		slog.WarnContext(r.Context(), "Rejected request", "path", r.URL.Path, "error", err)
		http.Error(w, userErr.Error(), http.StatusBadRequest)
		return
	}
	slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
