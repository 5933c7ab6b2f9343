package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rohmanhakim/logo-crawler/internal/logo"
	"github.com/rohmanhakim/logo-crawler/internal/metadata"
	"github.com/rohmanhakim/logo-crawler/internal/resultcache"
	"github.com/rohmanhakim/logo-crawler/pkg/hashutil"
	"github.com/rohmanhakim/logo-crawler/pkg/timeutil"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

/*
Analyzer turns candidate images into classification results, consulting
the result cache before paying for a classification.

Flow per image:
 1. Fingerprint the raw bytes
 2. Cache hit: return the cached result unchanged
 3. Cache miss: classify, stamp fingerprint and timestamp, store, return

Concurrent misses on the same fingerprint share one classification.
*/
type Analyzer struct {
	cache      resultcache.Store[logo.Result]
	classifier Classifier
	hashAlgo   hashutil.HashAlgo
	now        timeutil.Clock
	sink       metadata.MetadataSink
	inflight   singleflight.Group
	// default fan-out width for AnalyzeAll
	concurrency int
}

type Option func(*Analyzer)

func WithHashAlgo(algo hashutil.HashAlgo) Option {
	return func(a *Analyzer) {
		a.hashAlgo = algo
	}
}

// WithConcurrency sets how many images AnalyzeAll classifies at once when
// the caller passes no limit.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

func WithClock(now timeutil.Clock) Option {
	return func(a *Analyzer) {
		if now != nil {
			a.now = now
		}
	}
}

func WithMetadataSink(sink metadata.MetadataSink) Option {
	return func(a *Analyzer) {
		if sink != nil {
			a.sink = sink
		}
	}
}

// NewAnalyzer fingerprints with MD5 unless WithHashAlgo says otherwise.
func NewAnalyzer(
	cache resultcache.Store[logo.Result],
	classifier Classifier,
	opts ...Option,
) *Analyzer {
	a := &Analyzer{
		cache:      cache,
		classifier: classifier,
		hashAlgo:   hashutil.HashAlgoMD5,
		now:        timeutil.SystemClock,
		sink:       &metadata.NoopSink{},

		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Analyzer) Concurrency() int {
	return a.concurrency
}

// Fingerprint returns the cache key for data.
func (a *Analyzer) Fingerprint(data []byte) (string, error) {
	return hashutil.HashBytes(data, a.hashAlgo)
}

// Analyze returns the classification for image, from cache when a fresh
// entry exists.
func (a *Analyzer) Analyze(ctx context.Context, image Image) (logo.Result, error) {
	result, err := a.analyze(ctx, image)
	if err != nil {
		a.recordError(image, err)
		return logo.Result{}, err
	}
	return result, nil
}

func (a *Analyzer) analyze(ctx context.Context, image Image) (logo.Result, *AnalyzerError) {
	if len(image.Data) == 0 {
		return logo.Result{}, &AnalyzerError{
			Message: fmt.Sprintf("no image data for %s", image.URL),
			Cause:   ErrCauseEmptyImage,
		}
	}

	fingerprint, err := a.Fingerprint(image.Data)
	if err != nil {
		return logo.Result{}, &AnalyzerError{
			Message: err.Error(),
			Cause:   ErrCauseFingerprint,
			Err:     err,
		}
	}

	if cached, ok := a.cache.Get(fingerprint); ok {
		return cached, nil
	}

	// The first caller's ctx drives the shared classification.
	value, err, _ := a.inflight.Do(fingerprint, func() (any, error) {
		return a.classify(ctx, fingerprint, image)
	})
	if err != nil {
		var analyzerErr *AnalyzerError
		if errors.As(err, &analyzerErr) {
			return logo.Result{}, analyzerErr
		}
		return logo.Result{}, &AnalyzerError{Message: err.Error(), Cause: ErrCauseClassifierFailure, Err: err}
	}
	return value.(logo.Result), nil
}

func (a *Analyzer) classify(ctx context.Context, fingerprint string, image Image) (logo.Result, error) {
	if err := ctx.Err(); err != nil {
		return logo.Result{}, &AnalyzerError{Message: err.Error(), Cause: ErrCauseCanceled, Err: err}
	}
	if a.classifier == nil {
		return logo.Result{}, &AnalyzerError{Message: "no classifier configured", Cause: ErrCauseClassifierFailure}
	}

	startedAt := time.Now()
	result, err := a.classifier.Classify(ctx, image)
	a.sink.RecordClassification(fingerprint, time.Since(startedAt), err == nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return logo.Result{}, &AnalyzerError{Message: err.Error(), Cause: ErrCauseCanceled, Err: err}
		}
		return logo.Result{}, &AnalyzerError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseClassifierFailure,
			Err:       err,
		}
	}

	result.ImageHash = fingerprint
	if result.URL == "" {
		result.URL = image.URL
	}
	if result.PageURL == "" {
		result.PageURL = image.PageURL
	}
	if image.IsHeader {
		result.IsHeader = true
	}
	if result.Timestamp.IsZero() {
		result.Timestamp = a.now()
	}

	a.cache.Set(fingerprint, result)
	return result, nil
}

// AnalyzeAll analyzes images with at most concurrency classifications in
// flight; a non-positive concurrency uses the analyzer's own setting.
// Images that fail are skipped; results keep input order. The only error
// returned is ctx's.
func (a *Analyzer) AnalyzeAll(ctx context.Context, images []Image, concurrency int) ([]logo.Result, error) {
	if concurrency < 1 {
		concurrency = a.concurrency
	}

	results := make([]logo.Result, len(images))
	ok := make([]bool, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, image := range images {
		if gctx.Err() != nil {
			break
		}
		i, image := i, image
		g.Go(func() error {
			result, err := a.Analyze(gctx, image)
			if err != nil {
				// recorded by Analyze; only cancellation stops the batch
				return gctx.Err()
			}
			results[i] = result
			ok[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]logo.Result, 0, len(images))
	for i, result := range results {
		if ok[i] {
			out = append(out, result)
		}
	}
	return out, nil
}

func (a *Analyzer) recordError(image Image, err *AnalyzerError) {
	a.sink.RecordError(
		time.Now(),
		"analyzer",
		"Analyzer.Analyze",
		mapAnalyzerErrorToMetadataCause(err),
		err.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, image.URL),
			metadata.NewAttr(metadata.AttrPageURL, image.PageURL),
		},
	)
}
