package upload

import (
	"strings"
	"time"

	"github.com/rohmanhakim/logo-crawler/pkg/retry"
	"github.com/rohmanhakim/logo-crawler/pkg/timeutil"
)

const (
	DefaultBucket  = "logo-images"
	DefaultFolder  = "background-removed"
	ContentTypePNG = "image/png"

	DefaultTimeout = 30 * time.Second
)

// Credentials locate the storage service. Empty fields count as absent.
type Credentials struct {
	Endpoint string
	APIKey   string
}

// Target is where an upload lands.
type Target struct {
	Bucket string
	Folder string
}

type TargetOption func(*Target)

func WithBucket(bucket string) TargetOption {
	return func(t *Target) {
		t.Bucket = bucket
	}
}

func WithFolder(folder string) TargetOption {
	return func(t *Target) {
		t.Folder = folder
	}
}

func NewTarget(opts ...TargetOption) Target {
	t := Target{
		Bucket: DefaultBucket,
		Folder: DefaultFolder,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Path joins folder and filename as "{folder}/{filename}".
// An empty folder stores the file at the bucket root.
func (t Target) Path(filename string) string {
	folder := strings.Trim(t.Folder, "/")
	if folder == "" {
		return filename
	}
	return folder + "/" + filename
}

// BreakerParam configures the circuit breaker around remote calls.
type BreakerParam struct {
	Enabled bool
	// FailureThreshold is the number of consecutive failed uploads that opens
	// the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
}

// Param tunes the remote call. The zero value is usable.
type Param struct {
	// Timeout bounds every attempt, upload and URL resolution together.
	Timeout time.Duration
	Retry   retry.RetryParam
	Breaker BreakerParam
}

func DefaultParam() Param {
	return Param{
		Timeout: DefaultTimeout,
		Retry: retry.NewRetryParam(
			0,
			time.Now().UnixNano(),
			1,
			timeutil.NewBackoffParam(500*time.Millisecond, 2.0, 10*time.Second),
		),
		Breaker: BreakerParam{
			Enabled:          true,
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
	}
}

func (p Param) normalize() Param {
	out := p
	def := DefaultParam()

	if out.Timeout <= 0 {
		out.Timeout = def.Timeout
	}
	if out.Retry.MaxAttempts < 1 {
		out.Retry.MaxAttempts = 1
	}
	if out.Breaker.FailureThreshold == 0 {
		out.Breaker.FailureThreshold = def.Breaker.FailureThreshold
	}
	if out.Breaker.OpenTimeout <= 0 {
		out.Breaker.OpenTimeout = def.Breaker.OpenTimeout
	}
	return out
}
