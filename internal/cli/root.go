package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rohmanhakim/logo-crawler/internal/config"
	"github.com/rohmanhakim/logo-crawler/internal/metadata"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "logo-crawler",
	Short: "Support services for the logo crawler.",
	Long: `logo-crawler bundles the leaf services of the logo crawling pipeline:
content fingerprinting for the classification cache, and best-effort upload
of processed logo images to object storage.

Storage is optional. Without SUPABASE_URL and SUPABASE_KEY (or the matching
flags) uploads are skipped and the commands still succeed.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path, JSON or YAML (e.g., /home/myuser/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(fingerprintCmd)
	rootCmd.AddCommand(versionCmd)
}

// InitConfigWithError loads the config file when one is given, applies the
// flag overrides, then fills missing storage credentials from the
// environment.
func InitConfigWithError() (config.Config, error) {
	configBuilder := config.WithDefault()

	if cfgFile != "" {
		fileCfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return config.Config{}, fmt.Errorf("error initializing config from file: %w", err)
		}
		configBuilder = fileCfg.Builder()
	}

	// Override with CLI flag values where provided
	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}
	if hashAlgo != "" {
		configBuilder = configBuilder.WithHashAlgo(normalizeHashAlgo(hashAlgo))
	}
	if storageURL != "" {
		configBuilder = configBuilder.WithStorageURL(storageURL)
	}
	if storageKey != "" {
		configBuilder = configBuilder.WithStorageKey(storageKey)
	}
	if bucket != "" {
		configBuilder = configBuilder.WithBucket(bucket)
	}
	if folderSet {
		configBuilder = configBuilder.WithFolder(folder)
	}

	configBuilder = configBuilder.WithStorageEnv(getenv)

	return configBuilder.Build()
}

// newSession builds the logger and metadata sink for one command run. Every
// line carries the same session id.
func newSession(w io.Writer, cfg config.Config) (*slog.Logger, *metadata.Recorder) {
	logger := metadata.NewLogger(w, "logo-crawler", cfg.LogLevel()).
		With("session_id", uuid.NewString())
	return logger, metadata.NewRecorder(logger)
}

var getenv = os.Getenv

func ResetFlags() {
	cfgFile = ""
	logLevel = ""
	filePath = ""
	objectName = ""
	bucket = ""
	folder = ""
	folderSet = false
	storageURL = ""
	storageKey = ""
	hashAlgo = ""
	getenv = os.Getenv
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetLogLevelForTest(level string) {
	logLevel = level
}

func SetFileForTest(path string) {
	filePath = path
}

func SetNameForTest(name string) {
	objectName = name
}

func SetBucketForTest(b string) {
	bucket = b
}

func SetFolderForTest(f string) {
	folder = f
	folderSet = true
}

func SetStorageURLForTest(u string) {
	storageURL = u
}

func SetStorageKeyForTest(key string) {
	storageKey = key
}

func SetHashAlgoForTest(algo string) {
	hashAlgo = algo
}

// SetEnvForTest replaces the environment lookup used for storage credentials.
func SetEnvForTest(env map[string]string) {
	getenv = func(key string) string {
		return env[key]
	}
}
