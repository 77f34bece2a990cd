package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

const defaultPartSize = 16 << 20

// S3Config configures an S3 or S3-compatible bucket.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // custom endpoint for S3-compatible stores
	PublicBaseURL   string // overrides the derived object URL base (e.g. a CDN)
	KeyPrefix       string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
	PartSize        int64
}

type s3Getter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type s3Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Sink uploads blobs with the multipart upload manager so large bodies are
// streamed part by part instead of being buffered whole.
type S3Sink struct {
	getter   s3Getter
	uploader s3Uploader
	bucket   string
	prefix   string
	urlBase  string
}

var _ Sink = (*S3Sink)(nil)

// NewS3Sink loads AWS configuration from the environment, overlaying any
// explicit credentials, and builds the client and uploader.
func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if strings.TrimSpace(cfg.Region) == "" {
		return nil, errors.New("s3 region is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	partSize := cfg.PartSize
	if partSize < manager.MinUploadPartSize {
		partSize = defaultPartSize
	}
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = partSize
	})
	return newS3Sink(client, uploader, cfg), nil
}

func newS3Sink(getter s3Getter, uploader s3Uploader, cfg S3Config) *S3Sink {
	prefix := strings.Trim(cfg.KeyPrefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3Sink{
		getter:   getter,
		uploader: uploader,
		bucket:   cfg.Bucket,
		prefix:   prefix,
		urlBase:  s3URLBase(cfg),
	}
}

// s3URLBase returns the URL prefix every object URL starts with, ending in "/".
func s3URLBase(cfg S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/"
	case cfg.Endpoint != "" && cfg.UsePathStyle:
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket + "/"
	case cfg.Endpoint != "":
		endpoint := strings.TrimRight(cfg.Endpoint, "/")
		scheme, host, ok := strings.Cut(endpoint, "://")
		if !ok {
			return "https://" + cfg.Bucket + "." + endpoint + "/"
		}
		return scheme + "://" + cfg.Bucket + "." + host + "/"
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", cfg.Bucket, cfg.Region)
	}
}

func (s *S3Sink) Put(ctx context.Context, key, mediaType string, body io.Reader, _ int64) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	objectKey := s.prefix + key
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(mediaType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.urlBase + objectKey, nil
}

func (s *S3Sink) Open(ctx context.Context, key string) (*Object, error) {
	if err := validateKey(key); err != nil {
		return nil, ErrObjectNotFound
	}
	out, err := s.getter.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.prefix + key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound") {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	obj := &Object{Body: out.Body, MediaType: aws.ToString(out.ContentType), Size: aws.ToInt64(out.ContentLength)}
	if obj.MediaType == "" {
		obj.MediaType = mediaTypeForKey(key)
	}
	return obj, nil
}

func (s *S3Sink) KeyForURL(rawURL string) (string, bool) {
	return keyFromPrefixedURL(rawURL, s.urlBase+s.prefix)
}
