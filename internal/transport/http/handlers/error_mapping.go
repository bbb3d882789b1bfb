package handlers

import (
	"errors"
	"net/http"

	"github.com/Singularity-Shift/sui-squad/internal/usecase"
)

// loginErrorStatus maps a login-completion failure onto the HTTP status and
// message shown on the relay page. Unknown errors collapse to 500 so internal
// detail never leaks to the browser.
func loginErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrAuthRequired):
		return http.StatusNotFound, "no login in flight for this user"
	case errors.Is(err, usecase.ErrInvalidProof):
		return http.StatusBadRequest, "identity token was rejected"
	case errors.Is(err, usecase.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "proving service unavailable, try again"
	case errors.Is(err, usecase.ErrConfiguration):
		return http.StatusInternalServerError, "login is not configured"
	default:
		return http.StatusInternalServerError, "login failed"
	}
}
