package apperrors

import (
	"errors"
	"net/http"
)

// Business-rule outcomes of donation operations. Handlers match these
// with errors.Is and map them to HTTP status codes; anything else is a
// dependency failure and surfaces as a 500.
var (
	// ErrNotFound means the referenced donation does not exist.
	ErrNotFound = errors.New("donation not found")

	// ErrForbidden means the caller does not own the resource.
	ErrForbidden = errors.New("not authorized")

	// ErrInvalidState means the operation is not legal in the donation's
	// current lifecycle state.
	ErrInvalidState = errors.New("action not allowed on this donation")

	// ErrConflict means the caller lost an atomic claim race.
	ErrConflict = errors.New("cannot accept donation")

	// ErrValidation means the request payload failed a business rule.
	ErrValidation = errors.New("invalid request")

	// ErrRouteUnavailable means the routing annotation failed. It never
	// fails a browse; the result is simply returned without a route.
	ErrRouteUnavailable = errors.New("route unavailable")
)

// HTTPStatus maps a service error to the status code the API returns.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusBadRequest
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRouteUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
