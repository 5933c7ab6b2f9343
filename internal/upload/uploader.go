package upload

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rohmanhakim/logo-crawler/internal/metadata"
	"github.com/rohmanhakim/logo-crawler/pkg/failure"
	"github.com/rohmanhakim/logo-crawler/pkg/retry"
	"github.com/rohmanhakim/logo-crawler/pkg/urlutil"
	"github.com/sony/gobreaker/v2"
)

/*
Uploader pushes processed images to an object store and returns their
public URL.

Responsibilities
- Decide once, at construction, whether storage is usable
- Never surface an error to the caller: every failure becomes ("", false)
- Bound every remote call by a deadline

The uploader keeps no mutable state besides the client handle and the
circuit breaker, so Upload may be called from many goroutines.
*/
type Uploader struct {
	state   state
	param   Param
	sink    metadata.MetadataSink
	breaker *gobreaker.CircuitBreaker[string]
}

// state is either disabled or enabled.
type state interface {
	isState()
}

type disabled struct {
	reason string
}

type enabled struct {
	client Client
}

func (disabled) isState() {}
func (enabled) isState()  {}

// NewUploader resolves the uploader state from creds and factory.
// Missing credentials, a nil factory, a malformed endpoint or a failing
// factory all produce a disabled uploader; none of them is returned as an
// error.
func NewUploader(
	creds Credentials,
	factory ClientFactory,
	param Param,
	sink metadata.MetadataSink,
) *Uploader {
	if sink == nil {
		sink = &metadata.NoopSink{}
	}
	u := &Uploader{
		param: param.normalize(),
		sink:  sink,
	}
	u.state = u.resolveState(creds, factory)

	if _, ok := u.state.(enabled); ok && u.param.Breaker.Enabled {
		u.breaker = newBreaker(u.param.Breaker, sink)
	}
	return u
}

// IsConfigured reports whether uploads will reach the store.
func (u *Uploader) IsConfigured() bool {
	_, ok := u.state.(enabled)
	return ok
}

// Upload stores data as {folder}/{filename} in the target bucket and
// returns its public URL. The second return value is false when storage is
// disabled or the upload failed for any reason.
func (u *Uploader) Upload(
	ctx context.Context,
	data []byte,
	filename string,
	opts ...TargetOption,
) (string, bool) {
	target := NewTarget(opts...)
	path := target.Path(filename)

	switch s := u.state.(type) {
	case enabled:
		return u.upload(ctx, s.client, target, path, data)
	case disabled:
		u.sink.RecordUpload(metadata.UploadEvent{
			Bucket:  target.Bucket,
			Path:    path,
			Outcome: metadata.UploadSkipped,
			Reason:  s.reason,
		})
		return "", false
	default:
		return "", false
	}
}

func (u *Uploader) upload(
	ctx context.Context,
	client Client,
	target Target,
	path string,
	data []byte,
) (string, bool) {
	startedAt := time.Now()

	if err := validateInput(target, path, data); err != nil {
		u.recordFailure(err, target, path, 0, time.Since(startedAt))
		return "", false
	}

	attempt := func(ctx context.Context) (string, failure.ClassifiedError) {
		return u.attempt(ctx, client, target.Bucket, path, data)
	}

	var (
		result retry.Result[string]
		err    error
	)
	if u.breaker != nil {
		_, err = u.breaker.Execute(func() (string, error) {
			result = retry.Retry(ctx, u.param.Retry, attempt)
			if result.IsFailure() {
				return "", result.Err()
			}
			return result.Value(), nil
		})
	} else {
		result = retry.Retry(ctx, u.param.Retry, attempt)
		if result.IsFailure() {
			err = result.Err()
		}
	}

	if err != nil {
		u.recordFailure(classifyRemoteError(err, "upload"), target, path, result.Attempts(), time.Since(startedAt))
		return "", false
	}

	url := result.Value()
	u.sink.RecordUpload(metadata.UploadEvent{
		Bucket:   target.Bucket,
		Path:     path,
		Outcome:  metadata.UploadSucceeded,
		URL:      url,
		Attempts: result.Attempts(),
		Duration: time.Since(startedAt),
	})
	return url, true
}

// attempt runs one upload + URL resolution under the per-attempt deadline.
func (u *Uploader) attempt(
	ctx context.Context,
	client Client,
	bucketName string,
	path string,
	data []byte,
) (string, failure.ClassifiedError) {
	attemptCtx, cancel := context.WithTimeout(ctx, u.param.Timeout)
	defer cancel()

	// From runs under the recover guard too: a selector panic is a failed upload.
	var bucket Bucket
	err := callWithContext(attemptCtx, func() error {
		bucket = client.From(bucketName)
		if bucket == nil {
			return &UploadError{
				Message: fmt.Sprintf("no handle for bucket %s", bucketName),
				Cause:   ErrCauseClientPanic,
			}
		}
		return bucket.Upload(attemptCtx, path, data, ContentTypePNG)
	})
	if err != nil {
		return "", classifyRemoteError(err, "put object")
	}

	var publicURL string
	err = callWithContext(attemptCtx, func() error {
		resolved, err := bucket.PublicURL(path)
		publicURL = resolved
		return err
	})
	if err != nil {
		return "", classifyRemoteError(err, "resolve public url")
	}
	if publicURL == "" {
		return "", &UploadError{
			Message:   fmt.Sprintf("store returned no public url for %s", path),
			Retryable: false,
			Cause:     ErrCauseEmptyPublicURL,
		}
	}
	return publicURL, nil
}

func (u *Uploader) resolveState(creds Credentials, factory ClientFactory) state {
	if creds.Endpoint == "" || creds.APIKey == "" {
		u.sink.RecordNotice("upload", "storage not configured: missing endpoint or api key", nil)
		return disabled{reason: "storage not configured"}
	}
	if factory == nil {
		u.sink.RecordNotice("upload", "storage client unavailable: uploads disabled", nil)
		return disabled{reason: "storage client unavailable"}
	}

	endpoint, err := urlutil.ParseEndpoint(creds.Endpoint)
	if err != nil {
		u.recordInitError(&UploadError{
			Message: err.Error(),
			Cause:   ErrCauseInvalidEndpoint,
			Err:     err,
		}, creds.Endpoint)
		return disabled{reason: "invalid storage endpoint"}
	}

	client, err := buildClient(factory, endpoint.String(), creds.APIKey)
	if err != nil {
		u.recordInitError(&UploadError{
			Message: err.Error(),
			Cause:   ErrCauseClientInit,
			Err:     err,
		}, endpoint.String())
		return disabled{reason: "storage client init failed"}
	}

	u.sink.RecordNotice("upload", "storage initialized", []metadata.Attribute{
		metadata.NewAttr(metadata.AttrEndpoint, endpoint.String()),
	})
	return enabled{client: client}
}

func (u *Uploader) recordInitError(err *UploadError, endpoint string) {
	u.sink.RecordError(
		time.Now(),
		"upload",
		"NewUploader",
		mapUploadErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrEndpoint, endpoint),
		},
	)
}

func (u *Uploader) recordFailure(err *UploadError, target Target, path string, attempts int, duration time.Duration) {
	u.sink.RecordError(
		time.Now(),
		"upload",
		"Uploader.Upload",
		mapUploadErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrBucket, target.Bucket),
			metadata.NewAttr(metadata.AttrPath, path),
		},
	)
	u.sink.RecordUpload(metadata.UploadEvent{
		Bucket:   target.Bucket,
		Path:     path,
		Outcome:  metadata.UploadFailed,
		Attempts: attempts,
		Duration: duration,
	})
}

func validateInput(target Target, path string, data []byte) *UploadError {
	switch {
	case target.Bucket == "":
		return &UploadError{Message: "bucket is empty", Cause: ErrCauseInvalidInput}
	case path == "" || path[len(path)-1] == '/':
		return &UploadError{Message: "filename is empty", Cause: ErrCauseInvalidInput}
	case len(data) == 0:
		return &UploadError{Message: "image data is empty", Cause: ErrCauseInvalidInput}
	default:
		return nil
	}
}

// buildClient calls factory, converting a panic into an error.
func buildClient(factory ClientFactory, endpoint string, apiKey string) (client Client, err error) {
	defer func() {
		if r := recover(); r != nil {
			client = nil
			err = fmt.Errorf("storage client factory panicked: %v", r)
		}
	}()
	client, err = factory(endpoint, apiKey)
	if err == nil && client == nil {
		err = errors.New("storage client factory returned no client")
	}
	return client, err
}

// callWithContext runs fn and returns early with ctx.Err() when ctx is done
// first. A panic inside fn is returned as an error. The buffered channel
// lets an abandoned fn finish without blocking.
func callWithContext(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- &UploadError{
					Message:   fmt.Sprintf("%v", r),
					Retryable: false,
					Cause:     ErrCauseClientPanic,
				}
			}
		}()
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newBreaker(param BreakerParam, sink metadata.MetadataSink) *gobreaker.CircuitBreaker[string] {
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "object-storage-upload",
		MaxRequests: 1,
		Timeout:     param.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= param.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var uploadErr *UploadError
			if errors.As(err, &uploadErr) {
				switch uploadErr.Cause {
				case ErrCauseCanceled, ErrCauseInvalidInput:
					return true
				}
			}
			return false
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			sink.RecordNotice("upload", "circuit breaker state change", []metadata.Attribute{
				metadata.NewAttr("breaker", name),
				metadata.NewAttr("from", from.String()),
				metadata.NewAttr("to", to.String()),
			})
		},
	})
}
