package httpx

import (
	"errors"
	"net/http"

	"github.com/chronicle-cms/chronicle/internal/shared"
)

// RespondError maps the shared sentinels to problem responses. Anything
// unrecognised answers a generic 500 with no internal detail leaked.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", "duplicate entry")
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
