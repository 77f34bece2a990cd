package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	tubelyerrors "tubely/internal/errors"
	"tubely/internal/logging"
	"tubely/internal/videos"
)

type createVideoRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// VideoHandler manages video metadata records.
type VideoHandler struct {
	videos videos.Store
	logger logging.Logger
	now    func() time.Time
}

func NewVideoHandler(store videos.Store, logger logging.Logger) *VideoHandler {
	return &VideoHandler{videos: store, logger: logging.OrNop(logger), now: time.Now}
}

// HandleCreateVideo handles POST /api/videos.
func (h *VideoHandler) HandleCreateVideo(c *gin.Context) {
	userID, _ := CurrentUserID(c)
	var req createVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, tubelyerrors.BadRequest("Couldn't decode parameters", err))
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		writeError(c, h.logger, tubelyerrors.BadRequest("Title is required"))
		return
	}

	now := h.now().UTC()
	video, err := h.videos.Create(c.Request.Context(), videos.Video{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, video)
}

// HandleListVideos handles GET /api/videos.
func (h *VideoHandler) HandleListVideos(c *gin.Context) {
	userID, _ := CurrentUserID(c)
	list, err := h.videos.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []videos.Video{}
	}
	c.JSON(http.StatusOK, list)
}

// HandleGetVideo handles GET /api/videos/:videoID.
func (h *VideoHandler) HandleGetVideo(c *gin.Context) {
	video, ok := h.ownedVideo(c, "You can't view this video")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, video)
}

// HandleDeleteVideo handles DELETE /api/videos/:videoID. Stored assets are
// left in place.
func (h *VideoHandler) HandleDeleteVideo(c *gin.Context) {
	video, ok := h.ownedVideo(c, "You can't delete this video")
	if !ok {
		return
	}
	if err := h.videos.Delete(c.Request.Context(), video.ID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VideoHandler) ownedVideo(c *gin.Context, forbidden string) (videos.Video, bool) {
	id := strings.TrimSpace(c.Param("videoID"))
	if id == "" {
		writeError(c, h.logger, tubelyerrors.BadRequest("Invalid video ID"))
		return videos.Video{}, false
	}
	video, err := h.videos.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, videos.ErrNotFound) {
			err = tubelyerrors.NotFound("Couldn't find video", err)
		}
		writeError(c, h.logger, err)
		return videos.Video{}, false
	}
	userID, _ := CurrentUserID(c)
	if video.UserID != userID {
		writeError(c, h.logger, tubelyerrors.Forbidden(forbidden))
		return videos.Video{}, false
	}
	return video, true
}
