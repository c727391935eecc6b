package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/portafolio-docente/portafolio-docente/internal/shared"
)

// RespondError maps domain errors to HTTP responses. Unknown errors collapse
// into a generic 500: internal messages and stack traces never reach the
// client, only the server-side log.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Retryable {
			w.Header().Set("Retry-After", "5")
		}
		JSON(w, domainErr.Status, ProblemDetail{
			Title:    http.StatusText(domainErr.Status),
			Status:   domainErr.Status,
			Detail:   domainErr.Message,
			Code:     domainErr.Code,
			Required: domainErr.Required,
		})
		return
	}
	if logger != nil {
		logger.Error("unhandled error", slog.Any("error", err))
	}
	JSON(w, http.StatusInternalServerError, ProblemDetail{
		Title:  http.StatusText(http.StatusInternalServerError),
		Status: http.StatusInternalServerError,
		Detail: shared.ErrInternal.Message,
		Code:   shared.ErrInternal.Code,
	})
}
