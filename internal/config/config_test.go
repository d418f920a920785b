package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docextract/internal/config"
	"docextract/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, "us-east-1", cfg.Textract.Region)
	assert.Equal(t, "incoming", cfg.S3.KeyPrefix)
	assert.Equal(t, 5*time.Second, cfg.Poller.Interval)
	assert.Equal(t, 1.0, cfg.Poller.BackoffFactor)
	assert.Zero(t, cfg.Poller.MaxWait)
	assert.Equal(t, "self", cfg.Textract.FormTextMode)
	assert.Empty(t, cfg.Textract.SyncFeatureTypes())
	assert.Equal(t, []domain.FeatureType{domain.FeatureTables, domain.FeatureForms}, cfg.Textract.AsyncFeatureTypes())
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCEXTRACT_S3_REGION", "eu-west-1")
	t.Setenv("DOCEXTRACT_S3_ACCESS_KEY", "AKIA")
	t.Setenv("DOCEXTRACT_S3_SECRET_KEY", "secret")
	t.Setenv("DOCEXTRACT_TEXTRACT_SYNC_FEATURES", "forms")
	t.Setenv("DOCEXTRACT_POLLER_INTERVAL", "250ms")
	t.Setenv("DOCEXTRACT_POLLER_MAX_WAIT", "2m")
	t.Setenv("DOCEXTRACT_CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.Textract.Region)
	assert.Equal(t, "AKIA", cfg.Textract.AccessKey)
	assert.Equal(t, "secret", cfg.Textract.SecretKey)
	assert.Equal(t, []domain.FeatureType{domain.FeatureForms}, cfg.Textract.SyncFeatureTypes())
	assert.Equal(t, 250*time.Millisecond, cfg.Poller.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Poller.MaxWait)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_TextractRegionOverride(t *testing.T) {
	t.Setenv("DOCEXTRACT_S3_REGION", "eu-west-1")
	t.Setenv("DOCEXTRACT_TEXTRACT_REGION", "us-west-2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "us-west-2", cfg.Textract.Region)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestS3Config_MaxFileSizeBytes(t *testing.T) {
	assert.Equal(t, int64(2*1024*1024), (&config.S3Config{MaxFileSizeMB: 2}).MaxFileSizeBytes())
	assert.Zero(t, (&config.S3Config{}).MaxFileSizeBytes())
}
