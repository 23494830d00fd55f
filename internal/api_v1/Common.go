package api_v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/psource-dev/psman/internal/api_v1/resp"
	"github.com/psource-dev/psman/internal/github"
	"github.com/psource-dev/psman/internal/registry"
)

// respondDomainError maps domain errors onto HTTP statuses. Anything
// unrecognized is a 500.
func respondDomainError(c *gin.Context, err error) {
	var valErr *registry.ValidationError
	var apiErr *github.APIError
	var transportErr *github.TransportError

	switch {
	case errors.Is(err, github.ErrNotFound):
		resp.RespondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, github.ErrRateLimited):
		resp.RespondError(c, http.StatusTooManyRequests, err.Error())
	case errors.As(err, &valErr):
		resp.RespondError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &transportErr):
		resp.RespondError(c, http.StatusBadGateway, err.Error())
	case errors.As(err, &apiErr):
		resp.RespondError(c, http.StatusBadGateway, err.Error())
	default:
		resp.RespondError(c, http.StatusInternalServerError, err.Error())
	}
}
