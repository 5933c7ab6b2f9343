package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rohmanhakim/logo-crawler/internal/config"
	"github.com/rohmanhakim/logo-crawler/pkg/hashutil"
)

func writeConfigFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestWithDefault(t *testing.T) {
	cfg := config.WithDefault()

	if cfg == nil {
		t.Fatal("WithDefault() returned nil")
	}

	builtCfg, err := cfg.Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if builtCfg.CacheTTL() != 24*time.Hour {
		t.Errorf("expected CacheTTL 24h, got %v", builtCfg.CacheTTL())
	}
	if builtCfg.HashAlgo() != hashutil.HashAlgoMD5 {
		t.Errorf("expected HashAlgo md5, got %s", builtCfg.HashAlgo())
	}

	// Storage is off until credentials are supplied
	if builtCfg.StorageConfigured() {
		t.Error("expected storage to be unconfigured by default")
	}
	if builtCfg.Bucket() != "logo-images" {
		t.Errorf("expected Bucket 'logo-images', got '%s'", builtCfg.Bucket())
	}
	if builtCfg.Folder() != "background-removed" {
		t.Errorf("expected Folder 'background-removed', got '%s'", builtCfg.Folder())
	}
	if builtCfg.UploadTimeout() != 30*time.Second {
		t.Errorf("expected UploadTimeout 30s, got %v", builtCfg.UploadTimeout())
	}

	// Retries are off by default
	if builtCfg.MaxAttempt() != 1 {
		t.Errorf("expected MaxAttempt 1, got %d", builtCfg.MaxAttempt())
	}
	if builtCfg.RandomSeed() == 0 {
		t.Error("expected RandomSeed to be set, got 0")
	}
	if builtCfg.BackoffInitialDuration() != 500*time.Millisecond {
		t.Errorf("expected BackoffInitialDuration 500ms, got %v", builtCfg.BackoffInitialDuration())
	}
	if builtCfg.BackoffMultiplier() != 2.0 {
		t.Errorf("expected BackoffMultiplier 2.0, got %f", builtCfg.BackoffMultiplier())
	}
	if builtCfg.BackoffMaxDuration() != 10*time.Second {
		t.Errorf("expected BackoffMaxDuration 10s, got %v", builtCfg.BackoffMaxDuration())
	}

	if !builtCfg.BreakerEnabled() {
		t.Error("expected breaker to be enabled by default")
	}
	if builtCfg.BreakerFailureThreshold() != 5 {
		t.Errorf("expected BreakerFailureThreshold 5, got %d", builtCfg.BreakerFailureThreshold())
	}
	if builtCfg.BreakerOpenTimeout() != 30*time.Second {
		t.Errorf("expected BreakerOpenTimeout 30s, got %v", builtCfg.BreakerOpenTimeout())
	}

	if builtCfg.Concurrency() != 4 {
		t.Errorf("expected Concurrency 4, got %d", builtCfg.Concurrency())
	}
	if builtCfg.LogLevel() != "info" {
		t.Errorf("expected LogLevel 'info', got '%s'", builtCfg.LogLevel())
	}
}

func TestBuilderOverrides(t *testing.T) {
	cfg, err := config.WithDefault().
		WithCacheTTL(time.Hour).
		WithHashAlgo(hashutil.HashAlgoBLAKE3).
		WithStorageURL("https://test.supabase.co").
		WithStorageKey("test_key").
		WithBucket("b").
		WithFolder("f").
		WithUploadTimeout(5 * time.Second).
		WithMaxAttempt(3).
		WithJitter(time.Millisecond).
		WithRandomSeed(42).
		WithBackoffInitialDuration(time.Millisecond).
		WithBackoffMultiplier(3).
		WithBackoffMaxDuration(time.Second).
		WithBreakerEnabled(false).
		WithBreakerOpenTimeout(time.Minute).
		WithConcurrency(8).
		WithLogLevel("debug").
		Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.CacheTTL() != time.Hour {
		t.Errorf("expected CacheTTL 1h, got %v", cfg.CacheTTL())
	}
	if cfg.HashAlgo() != hashutil.HashAlgoBLAKE3 {
		t.Errorf("expected HashAlgo blake3, got %s", cfg.HashAlgo())
	}
	if !cfg.StorageConfigured() {
		t.Error("expected storage to be configured")
	}
	if cfg.Bucket() != "b" || cfg.Folder() != "f" {
		t.Errorf("expected target b/f, got %s/%s", cfg.Bucket(), cfg.Folder())
	}
	if cfg.MaxAttempt() != 3 {
		t.Errorf("expected MaxAttempt 3, got %d", cfg.MaxAttempt())
	}
	if cfg.RandomSeed() != 42 {
		t.Errorf("expected RandomSeed 42, got %d", cfg.RandomSeed())
	}
	if cfg.BreakerEnabled() {
		t.Error("expected breaker to be disabled")
	}
	if cfg.Concurrency() != 8 {
		t.Errorf("expected Concurrency 8, got %d", cfg.Concurrency())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("expected LogLevel 'debug', got '%s'", cfg.LogLevel())
	}
}

func TestWithFolder_EmptyMeansBucketRoot(t *testing.T) {
	cfg, err := config.WithDefault().WithFolder("").Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}
	if cfg.Folder() != "" {
		t.Errorf("expected empty Folder, got '%s'", cfg.Folder())
	}
}

func TestWithStorageEnv(t *testing.T) {
	env := map[string]string{
		config.EnvStorageURL: " https://env.supabase.co ",
		config.EnvStorageKey: "env_key",
	}
	getenv := func(key string) string { return env[key] }

	t.Run("fills empty credentials", func(t *testing.T) {
		cfg, err := config.WithDefault().WithStorageEnv(getenv).Build()
		if err != nil {
			t.Fatalf("should not have any error, got %v", err)
		}
		if cfg.StorageURL() != "https://env.supabase.co" {
			t.Errorf("expected env StorageURL, got '%s'", cfg.StorageURL())
		}
		if cfg.StorageKey() != "env_key" {
			t.Errorf("expected env StorageKey, got '%s'", cfg.StorageKey())
		}
	})

	t.Run("explicit values win", func(t *testing.T) {
		cfg, err := config.WithDefault().
			WithStorageURL("https://flag.supabase.co").
			WithStorageEnv(getenv).
			Build()
		if err != nil {
			t.Fatalf("should not have any error, got %v", err)
		}
		if cfg.StorageURL() != "https://flag.supabase.co" {
			t.Errorf("expected flag StorageURL, got '%s'", cfg.StorageURL())
		}
		if cfg.StorageKey() != "env_key" {
			t.Errorf("expected env StorageKey, got '%s'", cfg.StorageKey())
		}
	})

	t.Run("nil getenv", func(t *testing.T) {
		cfg, err := config.WithDefault().WithStorageEnv(nil).Build()
		if err != nil {
			t.Fatalf("should not have any error, got %v", err)
		}
		if cfg.StorageConfigured() {
			t.Error("expected storage to stay unconfigured")
		}
	})
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		builder *config.Config
	}{
		{name: "zero ttl", builder: config.WithDefault().WithCacheTTL(0)},
		{name: "negative ttl", builder: config.WithDefault().WithCacheTTL(-time.Second)},
		{name: "unknown hash algo", builder: config.WithDefault().WithHashAlgo("crc32")},
		{name: "empty bucket", builder: config.WithDefault().WithBucket(" ")},
		{name: "zero upload timeout", builder: config.WithDefault().WithUploadTimeout(0)},
		{name: "zero max attempt", builder: config.WithDefault().WithMaxAttempt(0)},
		{name: "negative jitter", builder: config.WithDefault().WithJitter(-time.Second)},
		{name: "shrinking backoff", builder: config.WithDefault().WithBackoffMultiplier(0.5)},
		{name: "breaker without threshold", builder: config.WithDefault().WithBreakerFailureThreshold(0)},
		{name: "zero concurrency", builder: config.WithDefault().WithConcurrency(0)},
		{name: "unknown log level", builder: config.WithDefault().WithLogLevel("verbose")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if err == nil {
				t.Fatal("should error")
			}
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig err, got %v", err)
			}
		})
	}
}

func TestBuild_DisabledBreakerAllowsZeroThreshold(t *testing.T) {
	_, err := config.WithDefault().WithBreakerEnabled(false).WithBreakerFailureThreshold(0).Build()
	if err != nil {
		t.Errorf("should not have any error, got %v", err)
	}
}

func TestBuilder_CopiesConfig(t *testing.T) {
	base, err := config.WithDefault().Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	overridden, err := base.Builder().WithBucket("other").Build()
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if base.Bucket() != "logo-images" {
		t.Errorf("expected base Bucket to stay 'logo-images', got '%s'", base.Bucket())
	}
	if overridden.Bucket() != "other" {
		t.Errorf("expected Bucket 'other', got '%s'", overridden.Bucket())
	}
}

func TestWithConfigFile_FileDoesNotExist(t *testing.T) {
	_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "missing.json"))

	if !errors.Is(err, config.ErrFileDoesNotExist) {
		t.Errorf("expected ErrFileDoesNotExist, got %v", err)
	}
}

func TestWithConfigFile_UnsupportedFormat(t *testing.T) {
	path := writeConfigFile(t, "config.toml", "cacheTtl = 1")

	_, err := config.WithConfigFile(path)

	if !errors.Is(err, config.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestWithConfigFile_InvalidContent(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "json", file: "config.json", content: `{"bucket": `},
		{name: "yaml", file: "config.yaml", content: "bucket: [unclosed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.WithConfigFile(writeConfigFile(t, tt.file, tt.content))

			if !errors.Is(err, config.ErrConfigParsingFail) {
				t.Errorf("expected ErrConfigParsingFail, got %v", err)
			}
		})
	}
}

func TestWithConfigFile_ValidJSON(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{
		"cacheTtl": 3600000000000,
		"hashAlgo": "SHA256",
		"storageUrl": "https://test.supabase.co",
		"storageKey": "test_key",
		"bucket": "b",
		"folder": "f",
		"maxAttempt": 3,
		"breakerEnabled": false,
		"concurrency": 2,
		"logLevel": "warn"
	}`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.CacheTTL() != time.Hour {
		t.Errorf("expected CacheTTL 1h, got %v", cfg.CacheTTL())
	}
	if cfg.HashAlgo() != hashutil.HashAlgoSHA256 {
		t.Errorf("expected HashAlgo sha256, got %s", cfg.HashAlgo())
	}
	if cfg.StorageURL() != "https://test.supabase.co" || cfg.StorageKey() != "test_key" {
		t.Errorf("unexpected storage credentials %s / %s", cfg.StorageURL(), cfg.StorageKey())
	}
	if cfg.Bucket() != "b" || cfg.Folder() != "f" {
		t.Errorf("expected target b/f, got %s/%s", cfg.Bucket(), cfg.Folder())
	}
	if cfg.MaxAttempt() != 3 {
		t.Errorf("expected MaxAttempt 3, got %d", cfg.MaxAttempt())
	}
	if cfg.BreakerEnabled() {
		t.Error("expected breaker to be disabled")
	}
	if cfg.Concurrency() != 2 {
		t.Errorf("expected Concurrency 2, got %d", cfg.Concurrency())
	}
	if cfg.LogLevel() != "warn" {
		t.Errorf("expected LogLevel 'warn', got '%s'", cfg.LogLevel())
	}
}

func TestWithConfigFile_ValidYAML(t *testing.T) {
	path := writeConfigFile(t, "config.yml", `
cacheTtl: 2h
hashAlgo: blake3
folder: ""
uploadTimeout: 5s
backoffInitialDuration: 250ms
breakerFailureThreshold: 3
breakerOpenTimeout: 1m
`)

	cfg, err := config.WithConfigFile(path)
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	if cfg.CacheTTL() != 2*time.Hour {
		t.Errorf("expected CacheTTL 2h, got %v", cfg.CacheTTL())
	}
	if cfg.HashAlgo() != hashutil.HashAlgoBLAKE3 {
		t.Errorf("expected HashAlgo blake3, got %s", cfg.HashAlgo())
	}
	if cfg.Folder() != "" {
		t.Errorf("expected empty Folder, got '%s'", cfg.Folder())
	}
	if cfg.UploadTimeout() != 5*time.Second {
		t.Errorf("expected UploadTimeout 5s, got %v", cfg.UploadTimeout())
	}
	if cfg.BackoffInitialDuration() != 250*time.Millisecond {
		t.Errorf("expected BackoffInitialDuration 250ms, got %v", cfg.BackoffInitialDuration())
	}
	if cfg.BreakerFailureThreshold() != 3 {
		t.Errorf("expected BreakerFailureThreshold 3, got %d", cfg.BreakerFailureThreshold())
	}
	if cfg.BreakerOpenTimeout() != time.Minute {
		t.Errorf("expected BreakerOpenTimeout 1m, got %v", cfg.BreakerOpenTimeout())
	}

	// Unset fields keep defaults
	if cfg.Bucket() != "logo-images" {
		t.Errorf("expected default Bucket, got '%s'", cfg.Bucket())
	}
	if !cfg.BreakerEnabled() {
		t.Error("expected breaker to stay enabled")
	}
}

func TestWithConfigFile_EmptyJSON(t *testing.T) {
	cfg, err := config.WithConfigFile(writeConfigFile(t, "config.json", `{}`))
	if err != nil {
		t.Fatalf("should not have any error, got %v", err)
	}

	defaults, _ := config.WithDefault().Build()
	if cfg.CacheTTL() != defaults.CacheTTL() {
		t.Errorf("expected default CacheTTL, got %v", cfg.CacheTTL())
	}
	if cfg.Folder() != defaults.Folder() {
		t.Errorf("expected default Folder, got '%s'", cfg.Folder())
	}
}

func TestWithConfigFile_InvalidValues(t *testing.T) {
	path := writeConfigFile(t, "config.json", `{"hashAlgo": "crc32"}`)

	_, err := config.WithConfigFile(path)

	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
