package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohmanhakim/logo-crawler/pkg/hashutil"
	"gopkg.in/yaml.v3"
)

const (
	EnvStorageURL = "SUPABASE_URL"
	EnvStorageKey = "SUPABASE_KEY"
)

type Config struct {
	//===============
	// Result cache
	//===============
	// How long a classification result stays valid, measured from its timestamp
	cacheTTL time.Duration
	// Algorithm used to fingerprint image bytes
	hashAlgo hashutil.HashAlgo

	//===============
	// Storage
	//===============
	// Project URL of the object store. Empty disables uploads
	storageURL string
	// API key of the object store. Empty disables uploads
	storageKey string
	bucket     string
	// Folder inside the bucket; objects land at {folder}/{filename}
	folder string
	// Maximum time of a single upload attempt, URL resolution included
	uploadTimeout time.Duration

	//===============
	// Retry
	//===============
	// maximum attempt per upload. 1 means no retry
	maxAttempt int
	// Randomized variation added on top of the backoff delay
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Circuit breaker
	//===============
	breakerEnabled bool
	// Consecutive failed uploads that open the breaker
	breakerFailureThreshold uint32
	// How long the breaker stays open before a probe upload
	breakerOpenTimeout time.Duration

	//===============
	// Analysis
	//===============
	// Maximum number of images classified concurrently
	concurrency int

	//===============
	// Logging
	//===============
	// debug, info, warn or error
	logLevel string
}

// configDTO is the file representation. Durations are Go duration strings
// in YAML ("30s") and nanoseconds in JSON, as time.Duration marshals.
type configDTO struct {
	CacheTTL                time.Duration `json:"cacheTtl,omitempty" yaml:"cacheTtl,omitempty"`
	HashAlgo                string        `json:"hashAlgo,omitempty" yaml:"hashAlgo,omitempty"`
	StorageURL              string        `json:"storageUrl,omitempty" yaml:"storageUrl,omitempty"`
	StorageKey              string        `json:"storageKey,omitempty" yaml:"storageKey,omitempty"`
	Bucket                  string        `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Folder                  *string       `json:"folder,omitempty" yaml:"folder,omitempty"`
	UploadTimeout           time.Duration `json:"uploadTimeout,omitempty" yaml:"uploadTimeout,omitempty"`
	MaxAttempt              int           `json:"maxAttempt,omitempty" yaml:"maxAttempt,omitempty"`
	Jitter                  time.Duration `json:"jitter,omitempty" yaml:"jitter,omitempty"`
	RandomSeed              int64         `json:"randomSeed,omitempty" yaml:"randomSeed,omitempty"`
	BackoffInitialDuration  time.Duration `json:"backoffInitialDuration,omitempty" yaml:"backoffInitialDuration,omitempty"`
	BackoffMultiplier       float64       `json:"backoffMultiplier,omitempty" yaml:"backoffMultiplier,omitempty"`
	BackoffMaxDuration      time.Duration `json:"backoffMaxDuration,omitempty" yaml:"backoffMaxDuration,omitempty"`
	BreakerEnabled          *bool         `json:"breakerEnabled,omitempty" yaml:"breakerEnabled,omitempty"`
	BreakerFailureThreshold uint32        `json:"breakerFailureThreshold,omitempty" yaml:"breakerFailureThreshold,omitempty"`
	BreakerOpenTimeout      time.Duration `json:"breakerOpenTimeout,omitempty" yaml:"breakerOpenTimeout,omitempty"`
	Concurrency             int           `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	LogLevel                string        `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := WithDefault()

	// Only override if a non-zero value is provided
	if dto.CacheTTL != 0 {
		cfg.cacheTTL = dto.CacheTTL
	}
	if dto.HashAlgo != "" {
		cfg.hashAlgo = hashutil.HashAlgo(strings.ToLower(dto.HashAlgo))
	}
	cfg.storageURL = dto.StorageURL
	cfg.storageKey = dto.StorageKey
	if dto.Bucket != "" {
		cfg.bucket = dto.Bucket
	}
	// An explicit empty folder means the bucket root
	if dto.Folder != nil {
		cfg.folder = *dto.Folder
	}
	if dto.UploadTimeout != 0 {
		cfg.uploadTimeout = dto.UploadTimeout
	}
	if dto.MaxAttempt != 0 {
		cfg.maxAttempt = dto.MaxAttempt
	}
	if dto.Jitter != 0 {
		cfg.jitter = dto.Jitter
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.BackoffInitialDuration != 0 {
		cfg.backoffInitialDuration = dto.BackoffInitialDuration
	}
	if dto.BackoffMultiplier != 0 {
		cfg.backoffMultiplier = dto.BackoffMultiplier
	}
	if dto.BackoffMaxDuration != 0 {
		cfg.backoffMaxDuration = dto.BackoffMaxDuration
	}
	if dto.BreakerEnabled != nil {
		cfg.breakerEnabled = *dto.BreakerEnabled
	}
	if dto.BreakerFailureThreshold != 0 {
		cfg.breakerFailureThreshold = dto.BreakerFailureThreshold
	}
	if dto.BreakerOpenTimeout != 0 {
		cfg.breakerOpenTimeout = dto.BreakerOpenTimeout
	}
	if dto.Concurrency != 0 {
		cfg.concurrency = dto.Concurrency
	}
	if dto.LogLevel != "" {
		cfg.logLevel = dto.LogLevel
	}

	return cfg.Build()
}

// WithConfigFile loads a JSON (.json) or YAML (.yaml, .yml) config file.
// Fields missing from the file keep their defaults.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(configContent, &cfgDTO)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(configContent, &cfgDTO)
	default:
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config with default values for all fields.
// Storage credentials default to empty, which leaves uploads disabled.
func WithDefault() *Config {
	defaultConfig := Config{
		cacheTTL:                24 * time.Hour,
		hashAlgo:                hashutil.HashAlgoMD5,
		bucket:                  "logo-images",
		folder:                  "background-removed",
		uploadTimeout:           30 * time.Second,
		maxAttempt:              1,
		jitter:                  100 * time.Millisecond,
		randomSeed:              time.Now().UnixNano(),
		backoffInitialDuration:  500 * time.Millisecond,
		backoffMultiplier:       2.0,
		backoffMaxDuration:      10 * time.Second,
		breakerEnabled:          true,
		breakerFailureThreshold: 5,
		breakerOpenTimeout:      30 * time.Second,
		concurrency:             4,
		logLevel:                "info",
	}
	return &defaultConfig
}

// Builder returns a mutable copy of c, so flags can override a loaded file.
func (c Config) Builder() *Config {
	builder := c
	return &builder
}

func (c *Config) WithCacheTTL(ttl time.Duration) *Config {
	c.cacheTTL = ttl
	return c
}

func (c *Config) WithHashAlgo(algo hashutil.HashAlgo) *Config {
	c.hashAlgo = algo
	return c
}

func (c *Config) WithStorageURL(storageURL string) *Config {
	c.storageURL = storageURL
	return c
}

func (c *Config) WithStorageKey(key string) *Config {
	c.storageKey = key
	return c
}

// WithStorageEnv fills empty storage credentials from getenv.
func (c *Config) WithStorageEnv(getenv func(string) string) *Config {
	if getenv == nil {
		return c
	}
	if c.storageURL == "" {
		c.storageURL = strings.TrimSpace(getenv(EnvStorageURL))
	}
	if c.storageKey == "" {
		c.storageKey = strings.TrimSpace(getenv(EnvStorageKey))
	}
	return c
}

func (c *Config) WithBucket(bucket string) *Config {
	c.bucket = bucket
	return c
}

func (c *Config) WithFolder(folder string) *Config {
	c.folder = folder
	return c
}

func (c *Config) WithUploadTimeout(timeout time.Duration) *Config {
	c.uploadTimeout = timeout
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithBreakerEnabled(enabled bool) *Config {
	c.breakerEnabled = enabled
	return c
}

func (c *Config) WithBreakerFailureThreshold(threshold uint32) *Config {
	c.breakerFailureThreshold = threshold
	return c
}

func (c *Config) WithBreakerOpenTimeout(timeout time.Duration) *Config {
	c.breakerOpenTimeout = timeout
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) Build() (Config, error) {
	if c.cacheTTL <= 0 {
		return Config{}, fmt.Errorf("%w: cacheTtl must be positive, got %v", ErrInvalidConfig, c.cacheTTL)
	}
	algo, err := hashutil.ParseHashAlgo(string(c.hashAlgo))
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
	}
	c.hashAlgo = algo
	if strings.TrimSpace(c.bucket) == "" {
		return Config{}, fmt.Errorf("%w: bucket cannot be empty", ErrInvalidConfig)
	}
	if c.uploadTimeout <= 0 {
		return Config{}, fmt.Errorf("%w: uploadTimeout must be positive, got %v", ErrInvalidConfig, c.uploadTimeout)
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1, got %d", ErrInvalidConfig, c.maxAttempt)
	}
	if c.jitter < 0 {
		return Config{}, fmt.Errorf("%w: jitter cannot be negative", ErrInvalidConfig)
	}
	if c.backoffMultiplier < 1 {
		return Config{}, fmt.Errorf("%w: backoffMultiplier must be at least 1, got %v", ErrInvalidConfig, c.backoffMultiplier)
	}
	if c.breakerEnabled && c.breakerFailureThreshold == 0 {
		return Config{}, fmt.Errorf("%w: breakerFailureThreshold must be at least 1", ErrInvalidConfig)
	}
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidConfig, c.concurrency)
	}
	switch strings.ToLower(c.logLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return Config{}, fmt.Errorf("%w: unknown logLevel %q", ErrInvalidConfig, c.logLevel)
	}

	return *c, nil
}

func (c Config) CacheTTL() time.Duration {
	return c.cacheTTL
}

func (c Config) HashAlgo() hashutil.HashAlgo {
	return c.hashAlgo
}

func (c Config) StorageURL() string {
	return c.storageURL
}

func (c Config) StorageKey() string {
	return c.storageKey
}

// StorageConfigured reports whether both credentials are present.
func (c Config) StorageConfigured() bool {
	return c.storageURL != "" && c.storageKey != ""
}

func (c Config) Bucket() string {
	return c.bucket
}

func (c Config) Folder() string {
	return c.folder
}

func (c Config) UploadTimeout() time.Duration {
	return c.uploadTimeout
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) BreakerEnabled() bool {
	return c.breakerEnabled
}

func (c Config) BreakerFailureThreshold() uint32 {
	return c.breakerFailureThreshold
}

func (c Config) BreakerOpenTimeout() time.Duration {
	return c.breakerOpenTimeout
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) LogLevel() string {
	return c.logLevel
}
