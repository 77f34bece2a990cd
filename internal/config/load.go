package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"tubely/internal/auth"
	"tubely/internal/observability"
	"tubely/internal/upload"
)

// EnvPrefix prefixes every environment override, e.g. TUBELY_AUTH_JWT_SECRET.
const EnvPrefix = "TUBELY"

const maskedValue = "********"

type loadOptions struct {
	configPath string
	overrides  map[string]any
}

// Option customizes Load.
type Option func(*loadOptions)

// WithConfigPath reads the given file instead of searching for tubely.yaml.
func WithConfigPath(path string) Option {
	return func(o *loadOptions) {
		o.configPath = strings.TrimSpace(path)
	}
}

// WithOverrides applies values on top of file and environment, keyed by
// dotted config key (e.g. "server.port").
func WithOverrides(overrides map[string]any) Option {
	return func(o *loadOptions) {
		if o.overrides == nil {
			o.overrides = make(map[string]any, len(overrides))
		}
		for k, v := range overrides {
			o.overrides[k] = v
		}
	}
}

// Load resolves configuration from defaults, an optional YAML file, TUBELY_*
// environment variables, and explicit overrides, in increasing precedence.
func Load(opts ...Option) (Config, error) {
	var options loadOptions
	for _, opt := range opts {
		opt(&options)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if options.configPath != "" {
		v.SetConfigFile(options.configPath)
	} else {
		v.SetConfigName("tubely")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.tubely")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if options.configPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	for key, value := range options.overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = v.ConfigFileUsed()
	normalize(&cfg)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	obs := observability.DefaultConfig()

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8091)
	v.SetDefault("server.public_base_url", "")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_header_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.multipart_memory_bytes", int64(32<<20))
	v.SetDefault("server.rate_limit.requests_per_minute", 120)
	v.SetDefault("server.rate_limit.burst", 20)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", auth.DefaultIssuer)

	v.SetDefault("store.provider", StoreSQLite)
	v.SetDefault("store.sqlite_path", "tubely.db")
	v.SetDefault("store.postgres_dsn", "")

	v.SetDefault("blob.provider", BlobLocal)
	v.SetDefault("blob.local_dir", "./assets")
	v.SetDefault("blob.scratch_dir", "")
	v.SetDefault("blob.s3.bucket", "")
	v.SetDefault("blob.s3.region", "us-east-1")
	v.SetDefault("blob.s3.endpoint", "")
	v.SetDefault("blob.s3.public_base_url", "")
	v.SetDefault("blob.s3.key_prefix", "")
	v.SetDefault("blob.s3.use_path_style", false)
	v.SetDefault("blob.s3.access_key_id", "")
	v.SetDefault("blob.s3.secret_access_key", "")
	v.SetDefault("blob.s3.part_size_bytes", int64(16<<20))
	v.SetDefault("blob.minio.endpoint", "")
	v.SetDefault("blob.minio.access_key_id", "")
	v.SetDefault("blob.minio.secret_access_key", "")
	v.SetDefault("blob.minio.bucket", "")
	v.SetDefault("blob.minio.use_ssl", false)
	v.SetDefault("blob.minio.public_base_url", "")

	v.SetDefault("upload.max_thumbnail_bytes", upload.DefaultMaxThumbnailBytes)
	v.SetDefault("upload.max_video_bytes", upload.DefaultMaxVideoBytes)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("metrics.enabled", obs.Metrics.Enabled)
	v.SetDefault("metrics.addr", obs.Metrics.Addr)

	v.SetDefault("tracing.enabled", obs.Tracing.Enabled)
	v.SetDefault("tracing.exporter", obs.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", obs.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.zipkin_endpoint", "")
	v.SetDefault("tracing.sample_rate", obs.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", obs.Tracing.ServiceName)
	v.SetDefault("tracing.service_version", obs.Tracing.ServiceVersion)
}

func normalize(cfg *Config) {
	cfg.Store.Provider = strings.ToLower(strings.TrimSpace(cfg.Store.Provider))
	cfg.Blob.Provider = strings.ToLower(strings.TrimSpace(cfg.Blob.Provider))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Server.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.Server.PublicBaseURL), "/")
	if cfg.Server.PublicBaseURL == "" {
		host := cfg.Server.Host
		if host == "" || host == "0.0.0.0" {
			host = "localhost"
		}
		cfg.Server.PublicBaseURL = fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
	}
	origins := cfg.Server.AllowedOrigins[:0]
	for _, origin := range cfg.Server.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	cfg.Server.AllowedOrigins = origins
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Validate reports every missing or inconsistent setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}

	switch c.Store.Provider {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for the sqlite store"))
		}
	case StorePostgres:
		if strings.TrimSpace(c.Store.PostgresDSN) == "" {
			errs = append(errs, errors.New("store.postgres_dsn is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported store.provider %q", c.Store.Provider))
	}

	switch c.Blob.Provider {
	case BlobMemory:
	case BlobLocal:
		if strings.TrimSpace(c.Blob.LocalDir) == "" {
			errs = append(errs, errors.New("blob.local_dir is required for the local sink"))
		}
	case BlobS3:
		if strings.TrimSpace(c.Blob.S3.Bucket) == "" {
			errs = append(errs, errors.New("blob.s3.bucket is required for the s3 sink"))
		}
		if strings.TrimSpace(c.Blob.S3.Region) == "" {
			errs = append(errs, errors.New("blob.s3.region is required for the s3 sink"))
		}
	case BlobMinio:
		if strings.TrimSpace(c.Blob.Minio.Endpoint) == "" {
			errs = append(errs, errors.New("blob.minio.endpoint is required for the minio sink"))
		}
		if strings.TrimSpace(c.Blob.Minio.Bucket) == "" {
			errs = append(errs, errors.New("blob.minio.bucket is required for the minio sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported blob.provider %q", c.Blob.Provider))
	}

	if c.Upload.MaxThumbnailBytes <= 0 || c.Upload.MaxVideoBytes <= 0 {
		errs = append(errs, errors.New("upload limits must be positive"))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unsupported logging.format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Masked returns a copy with credentials replaced.
func (c Config) Masked() Config {
	mask := func(s *string) {
		if *s != "" {
			*s = maskedValue
		}
	}
	mask(&c.Auth.JWTSecret)
	mask(&c.Store.PostgresDSN)
	mask(&c.Blob.S3.AccessKeyID)
	mask(&c.Blob.S3.SecretAccessKey)
	mask(&c.Blob.Minio.AccessKeyID)
	mask(&c.Blob.Minio.SecretAccessKey)
	c.Server.AllowedOrigins = append([]string(nil), c.Server.AllowedOrigins...)
	return c
}

// YAML renders the masked configuration.
func (c Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c.Masked())
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}
