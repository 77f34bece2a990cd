package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"tubely/internal/blob"
	tubelyerrors "tubely/internal/errors"
	"tubely/internal/logging"
	"tubely/internal/observability"
	"tubely/internal/videos"
)

// FormSource yields the multipart form of an upload. limit is the ceiling of
// the requested kind; sources reading from the network should stop well
// before the body grows far beyond it and report *http.MaxBytesError.
type FormSource func(limit int64) (*multipart.Form, error)

// FormValue wraps an already parsed form.
func FormValue(form *multipart.Form) FormSource {
	return func(int64) (*multipart.Form, error) { return form, nil }
}

// Request is one upload attempt.
type Request struct {
	VideoID string
	UserID  string
	Kind    Kind
	Form    FormSource
}

// StoredAsset describes a blob persisted by the pipeline.
type StoredAsset struct {
	Key       string `json:"key"`
	MediaType string `json:"media_type"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
}

// Metrics receives upload outcomes.
type Metrics interface {
	RecordUpload(ctx context.Context, kind, outcome string, sizeBytes int64)
	RecordOrphanedAsset(ctx context.Context, kind string)
}

type nopMetrics struct{}

func (nopMetrics) RecordUpload(context.Context, string, string, int64) {}
func (nopMetrics) RecordOrphanedAsset(context.Context, string) {}

// Config wires the pipeline collaborators. Videos and Sink are required.
type Config struct {
	Videos     videos.Store
	Sink       blob.Sink
	Names      NameGenerator
	Limits     Limits
	ScratchDir string
	Logger     logging.Logger
	Tracer     trace.Tracer
	Metrics    Metrics
	Now        func() time.Time
}

// Pipeline validates uploads, stores them in the sink, and links the
// resulting URL to the owning video record. It holds no per-request state.
type Pipeline struct {
	videos     videos.Store
	sink       blob.Sink
	names      NameGenerator
	policies   map[Kind]Policy
	scratchDir string
	logger     logging.Logger
	tracer     trace.Tracer
	metrics    Metrics
	now        func() time.Time
}

// NewPipeline builds a pipeline from cfg.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if cfg.Videos == nil {
		return nil, errors.New("upload pipeline requires a video store")
	}
	if cfg.Sink == nil {
		return nil, errors.New("upload pipeline requires a blob sink")
	}
	p := &Pipeline{
		videos:     cfg.Videos,
		sink:       cfg.Sink,
		names:      cfg.Names,
		policies:   Policies(cfg.Limits),
		scratchDir: strings.TrimSpace(cfg.ScratchDir),
		logger:     logging.OrNop(cfg.Logger),
		tracer:     cfg.Tracer,
		metrics:    cfg.Metrics,
		now:        cfg.Now,
	}
	if p.names == nil {
		p.names = RandomNames{}
	}
	if p.tracer == nil {
		p.tracer = noop.NewTracerProvider().Tracer("tubely/upload")
	}
	if p.metrics == nil {
		p.metrics = nopMetrics{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p, nil
}

// Policy returns the policy applied to kind.
func (p *Pipeline) Policy(kind Kind) (Policy, bool) {
	policy, ok := p.policies[kind]
	return policy, ok
}

// ValidateAndStore checks the request against the kind's policy and, when it
// passes, writes the file to the sink under a freshly generated name. The
// video record is not modified; see Link.
func (p *Pipeline) ValidateAndStore(ctx context.Context, req Request) (asset StoredAsset, err error) {
	policy, ok := p.policies[req.Kind]
	if !ok {
		return StoredAsset{}, fmt.Errorf("unknown asset kind %q", req.Kind)
	}

	ctx, span := p.tracer.Start(ctx, observability.SpanUploadStore,
		trace.WithAttributes(observability.UploadAttrs(req.VideoID, req.UserID, string(req.Kind))...))
	defer func() {
		outcome := "stored"
		switch {
		case err == nil:
			span.SetAttributes(
				attribute.String(observability.AttrAssetKey, asset.Key),
				attribute.Int64(observability.AttrAssetSize, asset.Size),
				attribute.String(observability.AttrMediaType, asset.MediaType),
			)
		case tubelyerrors.IsClientError(err):
			outcome = "rejected"
			span.SetAttributes(observability.ErrorAttrs(err)...)
		default:
			outcome = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		p.metrics.RecordUpload(ctx, string(req.Kind), outcome, asset.Size)
		span.End()
	}()

	if strings.TrimSpace(req.VideoID) == "" {
		return StoredAsset{}, tubelyerrors.BadRequest(policy.Messages.InvalidID)
	}
	if err := p.authorize(ctx, req.VideoID, req.UserID, policy); err != nil {
		return StoredAsset{}, err
	}

	header, err := p.extract(req.Form, policy)
	if err != nil {
		return StoredAsset{}, err
	}
	if header.Size > policy.MaxBytes {
		return StoredAsset{}, tubelyerrors.BadRequest(policy.Messages.TooLarge)
	}
	mediaType, ext, err := policy.accept(header.Header.Get("Content-Type"))
	if err != nil {
		return StoredAsset{}, err
	}

	name, err := p.names.NewName()
	if err != nil {
		return StoredAsset{}, err
	}
	key := name + ext

	file, err := header.Open()
	if err != nil {
		return StoredAsset{}, fmt.Errorf("open uploaded %s: %w", policy.Kind, err)
	}
	defer file.Close()

	var body io.Reader = file
	size := header.Size
	if policy.Spool {
		scratch, n, err := p.spool(file)
		if err != nil {
			return StoredAsset{}, err
		}
		defer p.discard(scratch)
		body, size = scratch, n
		if size > policy.MaxBytes {
			return StoredAsset{}, tubelyerrors.BadRequest(policy.Messages.TooLarge)
		}
	}

	url, err := p.sink.Put(ctx, key, mediaType, body, size)
	if err != nil {
		return StoredAsset{}, fmt.Errorf("store %s %s: %w", policy.Kind, key, err)
	}
	logging.FromContext(ctx, p.logger).Info("Stored %s %s for video %s (%d bytes)", policy.Kind, key, req.VideoID, size)
	return StoredAsset{Key: key, MediaType: mediaType, URL: url, Size: size}, nil
}

// Link points the video's thumbnail or video URL at asset and persists the
// record. A failure here leaves the blob orphaned; it is logged and counted
// but not deleted.
func (p *Pipeline) Link(ctx context.Context, videoID string, kind Kind, asset StoredAsset) (videos.Video, error) {
	ctx, span := p.tracer.Start(ctx, observability.SpanUploadLink, trace.WithAttributes(
		attribute.String(observability.AttrVideoID, videoID),
		attribute.String(observability.AttrAssetKind, string(kind)),
		attribute.String(observability.AttrAssetKey, asset.Key),
	))
	defer span.End()

	video, err := p.link(ctx, videoID, kind, asset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.FromContext(ctx, p.logger).Warn("Orphaned %s blob %s: linking to video %s failed: %v", kind, asset.Key, videoID, err)
		p.metrics.RecordOrphanedAsset(ctx, string(kind))
		return videos.Video{}, err
	}
	return video, nil
}

func (p *Pipeline) link(ctx context.Context, videoID string, kind Kind, asset StoredAsset) (videos.Video, error) {
	video, err := p.videos.Get(ctx, videoID)
	if err != nil {
		return videos.Video{}, fmt.Errorf("reload video %s: %w", videoID, err)
	}
	url := asset.URL
	switch kind {
	case KindThumbnail:
		video.ThumbnailURL = &url
	case KindVideo:
		video.VideoURL = &url
	default:
		return videos.Video{}, fmt.Errorf("unknown asset kind %q", kind)
	}
	video.UpdatedAt = p.now().UTC()
	if err := p.videos.Update(ctx, video); err != nil {
		return videos.Video{}, fmt.Errorf("update video %s: %w", videoID, err)
	}
	return video, nil
}

// Upload runs ValidateAndStore followed by Link.
func (p *Pipeline) Upload(ctx context.Context, req Request) (videos.Video, StoredAsset, error) {
	asset, err := p.ValidateAndStore(ctx, req)
	if err != nil {
		return videos.Video{}, StoredAsset{}, err
	}
	video, err := p.Link(ctx, req.VideoID, req.Kind, asset)
	if err != nil {
		return videos.Video{}, asset, err
	}
	return video, asset, nil
}

func (p *Pipeline) authorize(ctx context.Context, videoID, userID string, policy Policy) error {
	video, err := p.videos.Get(ctx, videoID)
	if err != nil {
		if errors.Is(err, videos.ErrNotFound) {
			return tubelyerrors.NotFound(policy.Messages.NotFound, err)
		}
		return fmt.Errorf("load video %s: %w", videoID, err)
	}
	if video.UserID != userID {
		return tubelyerrors.Forbidden(policy.Messages.Forbidden)
	}
	return nil
}

func (p *Pipeline) extract(source FormSource, policy Policy) (*multipart.FileHeader, error) {
	if source == nil {
		return nil, tubelyerrors.BadRequest(policy.Messages.MissingFile)
	}
	form, err := source(policy.MaxBytes)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, tubelyerrors.BadRequest(policy.Messages.TooLarge, err)
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, tubelyerrors.BadRequest(policy.Messages.MissingFile, err)
		}
		return nil, tubelyerrors.BadRequest(policy.Messages.BadForm, err)
	}
	if form == nil || len(form.File[policy.Field]) == 0 {
		return nil, tubelyerrors.BadRequest(policy.Messages.MissingFile)
	}
	return form.File[policy.Field][0], nil
}

// spool copies src into a scratch file and rewinds it for the sink.
func (p *Pipeline) spool(src io.Reader) (*os.File, int64, error) {
	scratch, err := os.CreateTemp(p.scratchDir, "tubely-upload-*.mp4")
	if err != nil {
		return nil, 0, fmt.Errorf("create scratch file: %w", err)
	}
	n, err := io.Copy(scratch, src)
	if err == nil {
		_, err = scratch.Seek(0, io.SeekStart)
	}
	if err != nil {
		p.discard(scratch)
		return nil, 0, fmt.Errorf("write scratch file: %w", err)
	}
	return scratch, n, nil
}

func (p *Pipeline) discard(scratch *os.File) {
	_ = scratch.Close()
	if err := os.Remove(scratch.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		p.logger.Warn("Failed to remove scratch file %s: %v", scratch.Name(), err)
	}
}
