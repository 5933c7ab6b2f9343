package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rohmanhakim/logo-crawler/internal/config"
	"github.com/rohmanhakim/logo-crawler/internal/metadata"
	"github.com/rohmanhakim/logo-crawler/internal/upload"
	"github.com/rohmanhakim/logo-crawler/pkg/fileutil"
	"github.com/rohmanhakim/logo-crawler/pkg/hashutil"
	"github.com/rohmanhakim/logo-crawler/pkg/retry"
	"github.com/rohmanhakim/logo-crawler/pkg/timeutil"
	"github.com/spf13/cobra"
)

// Length of the fingerprint prefix used for default object names.
const defaultNameLength = 12

var (
	filePath   string
	objectName string
	bucket     string
	folder     string
	folderSet  bool
	storageURL string
	storageKey string
)

var clientFactory upload.ClientFactory = upload.SupabaseFactory

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a processed logo image and print its public URL.",
	Long: `upload stores a PNG image in the configured bucket under
{folder}/{name} and prints its public URL.

When storage is not configured or the upload fails, a notice is printed
instead and the command still exits successfully.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		folderSet = cmd.Flags().Changed("folder")
		return RunUpload(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	uploadCmd.Flags().StringVar(&filePath, "file", "", "path of the image to upload (required)")
	uploadCmd.Flags().StringVar(&objectName, "name", "", "object name; defaults to the content fingerprint")
	uploadCmd.Flags().StringVar(&bucket, "bucket", "", "storage bucket (default \"logo-images\")")
	uploadCmd.Flags().StringVar(&folder, "folder", "", "folder inside the bucket (default \"background-removed\")")
	uploadCmd.Flags().StringVar(&storageURL, "storage-url", "", "storage project URL; falls back to $SUPABASE_URL")
	uploadCmd.Flags().StringVar(&storageKey, "storage-key", "", "storage API key; falls back to $SUPABASE_KEY")
	uploadCmd.Flags().StringVar(&hashAlgo, "hash-algo", "", "fingerprint algorithm: md5, sha256 or blake3")
	_ = uploadCmd.MarkFlagRequired("file")
}

// RunUpload runs the upload command. Only bad input or bad configuration
// is returned as an error; storage problems are reported on out.
func RunUpload(ctx context.Context, out io.Writer, logOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if filePath == "" {
		return fmt.Errorf("--file is required")
	}

	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}
	_, recorder := newSession(logOut, cfg)

	data, readErr := fileutil.ReadFile(filePath)
	if readErr != nil {
		return readErr
	}

	name, err := resolveObjectName(data, cfg.HashAlgo())
	if err != nil {
		return err
	}

	uploader := newUploader(cfg, recorder)
	url, ok := uploader.Upload(ctx, data, name,
		upload.WithBucket(cfg.Bucket()),
		upload.WithFolder(cfg.Folder()),
	)
	if !ok {
		if !uploader.IsConfigured() {
			fmt.Fprintln(out, "storage not configured: upload skipped")
			return nil
		}
		fmt.Fprintln(out, "upload failed: see log for details")
		return nil
	}

	fmt.Fprintln(out, url)
	return nil
}

func resolveObjectName(data []byte, algo hashutil.HashAlgo) (string, error) {
	if strings.TrimSpace(objectName) != "" {
		return fileutil.EnsureExtension(strings.TrimSpace(objectName), "png"), nil
	}
	digest, err := hashutil.HashBytes(data, algo)
	if err != nil {
		return "", err
	}
	return hashutil.Short(digest, defaultNameLength) + ".png", nil
}

func newUploader(cfg config.Config, sink metadata.MetadataSink) *upload.Uploader {
	return upload.NewUploader(
		upload.Credentials{
			Endpoint: cfg.StorageURL(),
			APIKey:   cfg.StorageKey(),
		},
		clientFactory,
		uploadParam(cfg),
		sink,
	)
}

func uploadParam(cfg config.Config) upload.Param {
	return upload.Param{
		Timeout: cfg.UploadTimeout(),
		Retry: retry.NewRetryParam(
			cfg.Jitter(),
			cfg.RandomSeed(),
			cfg.MaxAttempt(),
			timeutil.NewBackoffParam(
				cfg.BackoffInitialDuration(),
				cfg.BackoffMultiplier(),
				cfg.BackoffMaxDuration(),
			),
		),
		Breaker: upload.BreakerParam{
			Enabled:          cfg.BreakerEnabled(),
			FailureThreshold: cfg.BreakerFailureThreshold(),
			OpenTimeout:      cfg.BreakerOpenTimeout(),
		},
	}
}

// SetClientFactoryForTest swaps the storage client factory. Passing nil
// simulates a missing storage SDK.
func SetClientFactoryForTest(factory upload.ClientFactory) func() {
	previous := clientFactory
	clientFactory = factory
	return func() {
		clientFactory = previous
	}
}
