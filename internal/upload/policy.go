package upload

import (
	"sort"
	"strings"

	tubelyerrors "tubely/internal/errors"
)

// Kind names the asset slot an upload fills on a video record.
type Kind string

const (
	KindThumbnail Kind = "thumbnail"
	KindVideo     Kind = "video"
)

const (
	// DefaultMaxThumbnailBytes is the thumbnail ceiling (10 MiB).
	DefaultMaxThumbnailBytes int64 = 10 << 20
	// DefaultMaxVideoBytes is the video ceiling (1 GiB).
	DefaultMaxVideoBytes int64 = 1 << 30
)

// Messages are the user-facing texts returned for each rejection.
type Messages struct {
	InvalidID   string
	NotFound    string
	Forbidden   string
	MissingFile string
	TooLarge    string
	MissingType string
	WrongType   string
	BadForm     string
}

// Policy describes how one kind of asset is accepted.
type Policy struct {
	Kind     Kind
	Field    string
	MaxBytes int64
	// Extensions maps each accepted media type to the extension appended to
	// generated names.
	Extensions map[string]string
	// Spool copies the file to a scratch file before it is handed to the sink.
	Spool    bool
	Messages Messages
}

// Limits overrides the per-kind ceilings. Zero keeps the default.
type Limits struct {
	MaxThumbnailBytes int64
	MaxVideoBytes     int64
}

// Policies returns the thumbnail and video policies with limits applied.
func Policies(limits Limits) map[Kind]Policy {
	thumbMax := limits.MaxThumbnailBytes
	if thumbMax <= 0 {
		thumbMax = DefaultMaxThumbnailBytes
	}
	videoMax := limits.MaxVideoBytes
	if videoMax <= 0 {
		videoMax = DefaultMaxVideoBytes
	}
	return map[Kind]Policy{
		KindThumbnail: {
			Kind:     KindThumbnail,
			Field:    "thumbnail",
			MaxBytes: thumbMax,
			Extensions: map[string]string{
				"image/jpeg": ".jpg",
				"image/png":  ".png",
			},
			Messages: Messages{
				InvalidID:   "Invalid video ID",
				NotFound:    "Video not found",
				Forbidden:   "Video thumbnail does not belong to the current user",
				MissingFile: "Thumbnail file is missing",
				TooLarge:    "File Size of Thumbnail too Large",
				MissingType: "Missing Content-Type for thumbnail",
				WrongType:   "Thumbnail must be a JPEG or PNG image",
				BadForm:     "Unable to parse thumbnail form",
			},
		},
		KindVideo: {
			Kind:       KindVideo,
			Field:      "video",
			MaxBytes:   videoMax,
			Extensions: map[string]string{"video/mp4": ".mp4"},
			Spool:      true,
			Messages: Messages{
				InvalidID:   "Invalid Video Id for uploading",
				NotFound:    "Video to Upload not Found",
				Forbidden:   "Video to upload does not belong to user",
				MissingFile: "Video File not found",
				TooLarge:    "Video upload file more than max limit",
				MissingType: "File to upload must be mp4",
				WrongType:   "File to upload must be mp4",
				BadForm:     "Unable to parse video form",
			},
		},
	}
}

// MediaTypes lists the accepted media types in sorted order.
func (p Policy) MediaTypes() []string {
	types := make([]string, 0, len(p.Extensions))
	for mt := range p.Extensions {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// accept validates a declared Content-Type and returns the media type and its
// extension. The whole value must equal an accepted type; parameters are rejected.
func (p Policy) accept(declared string) (string, string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if mediaType == "" {
		return "", "", tubelyerrors.BadRequest(p.Messages.MissingType)
	}
	ext, ok := p.Extensions[mediaType]
	if !ok {
		return "", "", tubelyerrors.BadRequest(p.Messages.WrongType)
	}
	return mediaType, ext, nil
}
