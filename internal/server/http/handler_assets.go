package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tubely/internal/blob"
	tubelyerrors "tubely/internal/errors"
	"tubely/internal/logging"
)

// AssetHandler serves blobs of the local and memory sinks under /assets/.
type AssetHandler struct {
	sink   blob.Sink
	logger logging.Logger
}

func NewAssetHandler(sink blob.Sink, logger logging.Logger) *AssetHandler {
	return &AssetHandler{sink: sink, logger: logging.OrNop(logger)}
}

// HandleGetAsset handles GET /assets/*key.
func (h *AssetHandler) HandleGetAsset(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if !blob.ValidKey(key) {
		writeError(c, h.logger, tubelyerrors.NotFound("Asset not found"))
		return
	}
	obj, err := h.sink.Open(c.Request.Context(), key)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.MediaType, obj.Body, map[string]string{
		"Cache-Control": "public, max-age=3600",
	})
}

// HandleHealth handles GET /health.
func HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
