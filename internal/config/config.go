package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"docextract/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	S3       S3Config
	Textract TextractConfig
	Poller   PollerConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// S3Config holds AWS S3 settings for the staging bucket used by async extraction.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	KeyPrefix     string `mapstructure:"key_prefix"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// MaxFileSizeBytes returns the document size limit in bytes, or 0 for no limit.
func (s *S3Config) MaxFileSizeBytes() int64 {
	if s.MaxFileSizeMB <= 0 {
		return 0
	}
	return s.MaxFileSizeMB * 1024 * 1024
}

// TextractConfig holds AWS Textract settings.
type TextractConfig struct {
	Region            string  `mapstructure:"region"`
	Endpoint          string  `mapstructure:"endpoint"`
	AccessKey         string  `mapstructure:"access_key"`
	SecretKey         string  `mapstructure:"secret_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	PageSize          int32   `mapstructure:"page_size"`
	SyncFeatures      string  `mapstructure:"sync_features"`
	AsyncFeatures     string  `mapstructure:"async_features"`
	FormTextMode      string  `mapstructure:"form_text_mode"`
}

// SyncFeatureTypes returns the feature types requested on the synchronous path.
// Empty means plain text detection.
func (t *TextractConfig) SyncFeatureTypes() []domain.FeatureType {
	return domain.ParseFeatureTypes(t.SyncFeatures)
}

// AsyncFeatureTypes returns the feature types requested for asynchronous jobs.
func (t *TextractConfig) AsyncFeatureTypes() []domain.FeatureType {
	return domain.ParseFeatureTypes(t.AsyncFeatures)
}

// PollerConfig holds job polling settings. BackoffFactor 1 and MaxWait 0 poll at a
// fixed interval until the job finishes.
type PollerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	MaxInterval   time.Duration `mapstructure:"max_interval"`
	BackoffFactor float64       `mapstructure:"backoff_factor"`
	MaxWait       time.Duration `mapstructure:"max_wait"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the DOCEXTRACT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15m")
	v.SetDefault("server.environment", "development")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "docextract-staging")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.key_prefix", "incoming")
	v.SetDefault("s3.max_file_size_mb", 50)

	// Textract defaults
	v.SetDefault("textract.region", "")
	v.SetDefault("textract.endpoint", "")
	v.SetDefault("textract.requests_per_second", 2)
	v.SetDefault("textract.burst", 2)
	v.SetDefault("textract.page_size", 1000)
	v.SetDefault("textract.sync_features", "")
	v.SetDefault("textract.async_features", "TABLES,FORMS")
	v.SetDefault("textract.form_text_mode", "self")

	// Poller defaults
	v.SetDefault("poller.interval", "5s")
	v.SetDefault("poller.max_interval", "5s")
	v.SetDefault("poller.backoff_factor", 1.0)
	v.SetDefault("poller.max_wait", "0s")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "DOCEXTRACT_SERVER_PORT",
		"server.read_timeout":          "DOCEXTRACT_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "DOCEXTRACT_SERVER_WRITE_TIMEOUT",
		"server.environment":           "DOCEXTRACT_SERVER_ENVIRONMENT",
		"s3.region":                    "DOCEXTRACT_S3_REGION",
		"s3.bucket":                    "DOCEXTRACT_S3_BUCKET",
		"s3.endpoint":                  "DOCEXTRACT_S3_ENDPOINT",
		"s3.access_key":                "DOCEXTRACT_S3_ACCESS_KEY",
		"s3.secret_key":                "DOCEXTRACT_S3_SECRET_KEY",
		"s3.key_prefix":                "DOCEXTRACT_S3_KEY_PREFIX",
		"s3.max_file_size_mb":          "DOCEXTRACT_S3_MAX_FILE_SIZE_MB",
		"textract.region":              "DOCEXTRACT_TEXTRACT_REGION",
		"textract.endpoint":            "DOCEXTRACT_TEXTRACT_ENDPOINT",
		"textract.access_key":          "DOCEXTRACT_TEXTRACT_ACCESS_KEY",
		"textract.secret_key":          "DOCEXTRACT_TEXTRACT_SECRET_KEY",
		"textract.requests_per_second": "DOCEXTRACT_TEXTRACT_REQUESTS_PER_SECOND",
		"textract.burst":               "DOCEXTRACT_TEXTRACT_BURST",
		"textract.page_size":           "DOCEXTRACT_TEXTRACT_PAGE_SIZE",
		"textract.sync_features":       "DOCEXTRACT_TEXTRACT_SYNC_FEATURES",
		"textract.async_features":      "DOCEXTRACT_TEXTRACT_ASYNC_FEATURES",
		"textract.form_text_mode":      "DOCEXTRACT_TEXTRACT_FORM_TEXT_MODE",
		"poller.interval":              "DOCEXTRACT_POLLER_INTERVAL",
		"poller.max_interval":          "DOCEXTRACT_POLLER_MAX_INTERVAL",
		"poller.backoff_factor":        "DOCEXTRACT_POLLER_BACKOFF_FACTOR",
		"poller.max_wait":              "DOCEXTRACT_POLLER_MAX_WAIT",
		"cors.allowed_origins":         "DOCEXTRACT_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCEXTRACT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		KeyPrefix:     v.GetString("s3.key_prefix"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}

	// Textract must run in the bucket's region; inherit S3 settings when unset.
	cfg.Textract = TextractConfig{
		Region:            firstNonEmpty(v.GetString("textract.region"), cfg.S3.Region),
		Endpoint:          v.GetString("textract.endpoint"),
		AccessKey:         firstNonEmpty(v.GetString("textract.access_key"), cfg.S3.AccessKey),
		SecretKey:         firstNonEmpty(v.GetString("textract.secret_key"), cfg.S3.SecretKey),
		RequestsPerSecond: v.GetFloat64("textract.requests_per_second"),
		Burst:             v.GetInt("textract.burst"),
		PageSize:          v.GetInt32("textract.page_size"),
		SyncFeatures:      v.GetString("textract.sync_features"),
		AsyncFeatures:     v.GetString("textract.async_features"),
		FormTextMode:      v.GetString("textract.form_text_mode"),
	}

	cfg.Poller = PollerConfig{
		Interval:      v.GetDuration("poller.interval"),
		MaxInterval:   v.GetDuration("poller.max_interval"),
		BackoffFactor: v.GetFloat64("poller.backoff_factor"),
		MaxWait:       v.GetDuration("poller.max_wait"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
