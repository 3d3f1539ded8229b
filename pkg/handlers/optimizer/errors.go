package optimizer

import (
	"context"
	"errors"
	"net/http"

	"github.com/de-tools/tenant-optimizer/pkg/models/api"
	"github.com/de-tools/tenant-optimizer/pkg/models/domain"
	"github.com/rs/zerolog"
)

// respondError maps the domain error taxonomy onto HTTP statuses. Anything
// unrecognized is a 500 with no internal detail leaked to the caller.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := zerolog.Ctx(ctx)

	var invalid *domain.InvalidTransitionError
	var transient *domain.TransientError
	var permanent *domain.PermanentError

	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		respondJSON(ctx, w, http.StatusUnauthorized, api.Error{
			Kind:   "AuthError",
			Detail: "authentication failed; re-authenticate and retry",
		})
	case errors.Is(err, domain.ErrForbidden):
		respondJSON(ctx, w, http.StatusForbidden, api.Error{
			Kind:   "AuthError",
			Detail: "the signed-in identity lacks permission on the target resource",
		})
	case errors.Is(err, domain.ErrActionNotFound):
		respondJSON(ctx, w, http.StatusNotFound, api.Error{
			Kind:   "NotFound",
			Detail: "no action found for the given resource; run a scan first",
		})
	case errors.As(err, &invalid):
		respondJSON(ctx, w, http.StatusConflict, api.Error{
			Kind:   "InvalidTransition",
			Detail: invalid.Error(),
			Status: string(invalid.Current),
		})
	case errors.As(err, &transient):
		retryAfter := int(transient.RetryAfter.Seconds())
		if retryAfter <= 0 {
			retryAfter = 30
		}
		respondJSON(ctx, w, http.StatusServiceUnavailable, api.Error{
			Kind:       "ProviderTransientError",
			Detail:     "the cloud provider is temporarily unavailable",
			RetryAfter: retryAfter,
		})
	case errors.As(err, &permanent):
		respondJSON(ctx, w, http.StatusBadGateway, api.Error{
			Kind:   "ProviderPermanentError",
			Detail: permanent.Error(),
		})
	default:
		logger.Error().Err(err).Msg("request failed")
		respondJSON(ctx, w, http.StatusInternalServerError, api.Error{
			Kind:   "Internal",
			Detail: "internal server error",
		})
	}
}
