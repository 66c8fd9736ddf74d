package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-erp/meridian-front/internal/erp"
)

// Sentinel errors for the front-end layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
)

// RespondError maps front-end and upstream errors to RFC7807 responses.
// Upstream error details are forwarded verbatim so the browser can show
// them; anything unrecognized collapses to a generic message.
func RespondError(w http.ResponseWriter, err error) {
	var apiErr *erp.APIError
	switch {
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNotFound), errors.Is(err, erp.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, erp.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", "session expired, sign in again")
	case errors.As(err, &apiErr):
		Problem(w, http.StatusBadGateway, "Upstream Error", apiErr.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
