package http

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tubely/internal/blob"
	tubelyerrors "tubely/internal/errors"
	"tubely/internal/logging"
	"tubely/internal/upload"
	"tubely/internal/videos"
)

// multipartOverhead is the slack allowed on top of a kind's ceiling for
// boundaries and part headers.
const multipartOverhead = 1 << 20

const defaultMultipartMemory = 32 << 20

// UploadHandler serves thumbnail and video uploads plus thumbnail reads.
type UploadHandler struct {
	pipeline        *upload.Pipeline
	videos          videos.Store
	sink            blob.Sink
	multipartMemory int64
	logger          logging.Logger
}

func NewUploadHandler(pipeline *upload.Pipeline, store videos.Store, sink blob.Sink, multipartMemory int64, logger logging.Logger) *UploadHandler {
	if multipartMemory <= 0 {
		multipartMemory = defaultMultipartMemory
	}
	return &UploadHandler{
		pipeline:        pipeline,
		videos:          store,
		sink:            sink,
		multipartMemory: multipartMemory,
		logger:          logging.OrNop(logger),
	}
}

// HandleUploadThumbnail handles POST /api/thumbnails/:videoID.
func (h *UploadHandler) HandleUploadThumbnail(c *gin.Context) {
	video, ok := h.upload(c, upload.KindThumbnail)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, video)
}

// HandleUploadVideo handles POST /api/videos/:videoID.
func (h *UploadHandler) HandleUploadVideo(c *gin.Context) {
	if _, ok := h.upload(c, upload.KindVideo); !ok {
		return
	}
	c.JSON(http.StatusOK, nil)
}

func (h *UploadHandler) upload(c *gin.Context, kind upload.Kind) (videos.Video, bool) {
	userID, _ := CurrentUserID(c)
	defer func() {
		if c.Request.MultipartForm != nil {
			_ = c.Request.MultipartForm.RemoveAll()
		}
	}()

	video, _, err := h.pipeline.Upload(c.Request.Context(), upload.Request{
		VideoID: strings.TrimSpace(c.Param("videoID")),
		UserID:  userID,
		Kind:    kind,
		Form:    h.formSource(c),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return videos.Video{}, false
	}
	return video, true
}

// formSource parses the request body as multipart, refusing bodies that
// grow past the kind's ceiling plus multipartOverhead.
func (h *UploadHandler) formSource(c *gin.Context) upload.FormSource {
	return func(limit int64) (*multipart.Form, error) {
		body := http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)
		c.Request.Body = body
		if err := c.Request.ParseMultipartForm(h.multipartMemory); err != nil {
			var maxErr *http.MaxBytesError
			if !errors.As(err, &maxErr) {
				if _, probeErr := body.Read(make([]byte, 1)); errors.As(probeErr, &maxErr) {
					return nil, maxErr
				}
			}
			return nil, err
		}
		return c.Request.MultipartForm, nil
	}
}

// HandleGetThumbnail handles GET /api/thumbnails/:videoID by streaming the
// stored thumbnail back with its media type.
func (h *UploadHandler) HandleGetThumbnail(c *gin.Context) {
	videoID := strings.TrimSpace(c.Param("videoID"))
	if videoID == "" {
		writeError(c, h.logger, tubelyerrors.BadRequest("Invalid video ID"))
		return
	}

	video, err := h.videos.Get(c.Request.Context(), videoID)
	if err != nil {
		if errors.Is(err, videos.ErrNotFound) {
			err = tubelyerrors.NotFound("Couldn't find video", err)
		}
		writeError(c, h.logger, err)
		return
	}
	if video.ThumbnailURL == nil {
		writeError(c, h.logger, tubelyerrors.NotFound("Thumbnail not found"))
		return
	}
	key, ok := h.sink.KeyForURL(*video.ThumbnailURL)
	if !ok {
		writeError(c, h.logger, tubelyerrors.NotFound("Thumbnail not found"))
		return
	}

	obj, err := h.sink.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			err = tubelyerrors.NotFound("Thumbnail not found", err)
		}
		writeError(c, h.logger, err)
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.MediaType, obj.Body, map[string]string{
		"Cache-Control": "no-store",
	})
}
