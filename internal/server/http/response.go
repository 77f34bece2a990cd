package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tubely/internal/blob"
	tubelyerrors "tubely/internal/errors"
	"tubely/internal/logging"
	"tubely/internal/videos"
)

const internalErrorMessage = "Internal server error"

type apiErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps err to a status code and a short message. Internal
// failures are logged in full and answered with a generic message only.
func writeError(c *gin.Context, logger logging.Logger, err error) {
	logger = logging.FromContext(c.Request.Context(), logger)
	status := tubelyerrors.HTTPStatus(err)
	message := tubelyerrors.Message(err)

	if status == http.StatusInternalServerError {
		switch {
		case errors.Is(err, videos.ErrNotFound):
			status, message = http.StatusNotFound, "Couldn't find video"
		case errors.Is(err, blob.ErrObjectNotFound):
			status, message = http.StatusNotFound, "Asset not found"
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("HTTP %d - %s %s: %v", status, c.Request.Method, c.Request.URL.Path, err)
		message = internalErrorMessage
	} else {
		logger.Warn("HTTP %d - %s %s: %v", status, c.Request.Method, c.Request.URL.Path, err)
		if message == "" {
			message = http.StatusText(status)
		}
	}
	c.AbortWithStatusJSON(status, apiErrorResponse{Error: message})
}
