package config

import (
	"time"

	"tubely/internal/observability"
)

// Store and blob providers.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	BlobLocal  = "local"
	BlobMemory = "memory"
	BlobS3     = "s3"
	BlobMinio  = "minio"
)

// Config is the effective runtime configuration of the API server.
type Config struct {
	Server  ServerConfig                `mapstructure:"server" yaml:"server"`
	Auth    AuthConfig                  `mapstructure:"auth" yaml:"auth"`
	Store   StoreConfig                 `mapstructure:"store" yaml:"store"`
	Blob    BlobConfig                  `mapstructure:"blob" yaml:"blob"`
	Upload  UploadConfig                `mapstructure:"upload" yaml:"upload"`
	Logging LoggingConfig               `mapstructure:"logging" yaml:"logging"`
	Metrics observability.MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Tracing observability.TracingConfig `mapstructure:"tracing" yaml:"tracing"`

	// Source is the config file that was read, if any.
	Source string `mapstructure:"-" yaml:"-"`
}

type ServerConfig struct {
	Host                 string          `mapstructure:"host" yaml:"host"`
	Port                 int             `mapstructure:"port" yaml:"port"`
	PublicBaseURL        string          `mapstructure:"public_base_url" yaml:"public_base_url"`
	Environment          string          `mapstructure:"environment" yaml:"environment"`
	AllowedOrigins       []string        `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ReadHeaderTimeout    time.Duration   `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout      time.Duration   `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MultipartMemoryBytes int64           `mapstructure:"multipart_memory_bytes" yaml:"multipart_memory_bytes"`
	RateLimit            RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// RateLimitConfig throttles upload routes per user. Zero disables it.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Burst             int `mapstructure:"burst" yaml:"burst"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	Issuer    string `mapstructure:"issuer" yaml:"issuer"`
}

type StoreConfig struct {
	Provider    string `mapstructure:"provider" yaml:"provider"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
}

type BlobConfig struct {
	Provider   string      `mapstructure:"provider" yaml:"provider"`
	LocalDir   string      `mapstructure:"local_dir" yaml:"local_dir"`
	ScratchDir string      `mapstructure:"scratch_dir" yaml:"scratch_dir"`
	S3         S3Config    `mapstructure:"s3" yaml:"s3"`
	Minio      MinioConfig `mapstructure:"minio" yaml:"minio"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	Region          string `mapstructure:"region" yaml:"region"`
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	PublicBaseURL   string `mapstructure:"public_base_url" yaml:"public_base_url"`
	KeyPrefix       string `mapstructure:"key_prefix" yaml:"key_prefix"`
	UsePathStyle    bool   `mapstructure:"use_path_style" yaml:"use_path_style"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	PartSizeBytes   int64  `mapstructure:"part_size_bytes" yaml:"part_size_bytes"`
}

type MinioConfig struct {
	Endpoint        string `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	Bucket          string `mapstructure:"bucket" yaml:"bucket"`
	UseSSL          bool   `mapstructure:"use_ssl" yaml:"use_ssl"`
	PublicBaseURL   string `mapstructure:"public_base_url" yaml:"public_base_url"`
}

type UploadConfig struct {
	MaxThumbnailBytes int64 `mapstructure:"max_thumbnail_bytes" yaml:"max_thumbnail_bytes"`
	MaxVideoBytes     int64 `mapstructure:"max_video_bytes" yaml:"max_video_bytes"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// Observability returns the metrics and tracing sections.
func (c Config) Observability() observability.Config {
	return observability.Config{Metrics: c.Metrics, Tracing: c.Tracing}
}
