package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/rohmanhakim/logo-crawler/internal/analyzer"
	"github.com/rohmanhakim/logo-crawler/pkg/fileutil"
	"github.com/rohmanhakim/logo-crawler/pkg/hashutil"
	"github.com/spf13/cobra"
)

var hashAlgo string

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Print the content fingerprint used as the result cache key.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunFingerprint(cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func init() {
	fingerprintCmd.Flags().StringVar(&filePath, "file", "", "path of the image to fingerprint (required)")
	fingerprintCmd.Flags().StringVar(&hashAlgo, "hash-algo", "", "fingerprint algorithm: md5, sha256 or blake3")
	_ = fingerprintCmd.MarkFlagRequired("file")
}

// RunFingerprint prints the cache key the analyzer would use for the file.
func RunFingerprint(out io.Writer, logOut io.Writer) error {
	if filePath == "" {
		return fmt.Errorf("--file is required")
	}

	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}

	data, readErr := fileutil.ReadFile(filePath)
	if readErr != nil {
		return readErr
	}

	_, recorder := newSession(logOut, cfg)
	logoAnalyzer, _ := analyzer.NewFromConfig(cfg, nil, recorder)
	digest, err := logoAnalyzer.Fingerprint(data)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, digest)
	return nil
}

func normalizeHashAlgo(name string) hashutil.HashAlgo {
	return hashutil.HashAlgo(strings.ToLower(strings.TrimSpace(name)))
}
