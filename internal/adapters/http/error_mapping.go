package httpadapter

import (
	"net/http"

	"github.com/clipsense/retrieval/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNoContext), domain.IsKind(err, domain.ErrNoAnswer):
		return http.StatusUnprocessableEntity
	case domain.Unavailable(err):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrGenerationFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userFacingError hides internal detail: callers get an answer or an
// explicit "unable to answer", never a raw provider error.
func userFacingError(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return "invalid request"
	case domain.IsKind(err, domain.ErrNoContext):
		return "transcript too short to answer from"
	default:
		return "unable to answer"
	}
}
