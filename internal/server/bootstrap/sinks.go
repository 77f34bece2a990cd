package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tubely/internal/blob"
	"tubely/internal/config"
	"tubely/internal/logging"
)

// BuildSink creates the configured blob sink. servesAssets reports whether
// blobs must be served by this process under /assets/.
func BuildSink(ctx context.Context, cfg config.Config, logger logging.Logger) (sink blob.Sink, servesAssets bool, err error) {
	logger = logging.OrNop(logger)
	blobCfg := cfg.Blob

	switch blobCfg.Provider {
	case config.BlobLocal:
		local, err := blob.NewLocalSink(blobCfg.LocalDir, cfg.Server.PublicBaseURL)
		if err != nil {
			return nil, false, fmt.Errorf("create local sink: %w", err)
		}
		logger.Info("Assets stored on disk at %s", local.Dir())
		return local, true, nil

	case config.BlobMemory:
		logger.Warn("Assets are kept in memory and will be lost on restart")
		return blob.NewMemorySink(cfg.Server.PublicBaseURL), true, nil

	case config.BlobS3:
		s3Sink, err := blob.NewS3Sink(ctx, blob.S3Config{
			Bucket:          blobCfg.S3.Bucket,
			Region:          blobCfg.S3.Region,
			Endpoint:        blobCfg.S3.Endpoint,
			PublicBaseURL:   blobCfg.S3.PublicBaseURL,
			KeyPrefix:       blobCfg.S3.KeyPrefix,
			UsePathStyle:    blobCfg.S3.UsePathStyle,
			AccessKeyID:     blobCfg.S3.AccessKeyID,
			SecretAccessKey: blobCfg.S3.SecretAccessKey,
			PartSize:        blobCfg.S3.PartSizeBytes,
		})
		if err != nil {
			return nil, false, fmt.Errorf("create s3 sink: %w", err)
		}
		logger.Info("Assets stored in s3 bucket %s (%s)", blobCfg.S3.Bucket, blobCfg.S3.Region)
		return s3Sink, false, nil

	case config.BlobMinio:
		minioSink, err := blob.NewMinioSink(blob.MinioConfig{
			Endpoint:        blobCfg.Minio.Endpoint,
			AccessKeyID:     blobCfg.Minio.AccessKeyID,
			SecretAccessKey: blobCfg.Minio.SecretAccessKey,
			Bucket:          blobCfg.Minio.Bucket,
			UseSSL:          blobCfg.Minio.UseSSL,
			PublicBaseURL:   blobCfg.Minio.PublicBaseURL,
		})
		if err != nil {
			return nil, false, fmt.Errorf("create minio sink: %w", err)
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := minioSink.EnsureBucket(ctx); err != nil {
			return nil, false, fmt.Errorf("prepare minio bucket %s: %w", blobCfg.Minio.Bucket, err)
		}
		logger.Info("Assets stored in minio bucket %s at %s", blobCfg.Minio.Bucket, blobCfg.Minio.Endpoint)
		return minioSink, false, nil

	default:
		return nil, false, fmt.Errorf("unsupported blob provider %q", blobCfg.Provider)
	}
}

// instrumentSink reports sink latency and failures to reg. Registration
// failures leave the sink uninstrumented.
func instrumentSink(sink blob.Sink, reg prometheus.Registerer, logger logging.Logger) blob.Sink {
	if reg == nil {
		return sink
	}
	observer, err := blob.NewPrometheusObserver("tubely_blob", reg)
	if err != nil {
		logging.OrNop(logger).Warn("Blob metrics disabled: %v", err)
		return sink
	}
	return blob.Instrument(sink, observer)
}
