package metadata

import (
	"log/slog"
	"time"

	"github.com/rohmanhakim/logo-crawler/internal/metrics"
)

/*
Recorder turns component events into structured log lines and metrics.
It must not:
- affect control flow
- return errors to the caller
Components receive a MetadataSink and never a concrete logger, so tests can
inject NoopSink or a mock.
*/
type Recorder struct {
	logger *slog.Logger
}

func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		logger: logger,
	}
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
	args := []any{
		slog.Time("observed_at", observedAt),
		slog.String("package", packageName),
		slog.String("action", action),
		slog.String("cause", cause.String()),
		slog.String("error", details),
	}
	r.logger.Error("operation failed", append(args, attrsToArgs(attrs)...)...)
}

func (r *Recorder) RecordCacheLookup(fingerprint string, outcome CacheOutcome) {
	metrics.RecordCacheLookup(string(outcome))
	r.logger.Debug("cache lookup",
		slog.String(string(AttrFingerprint), fingerprint),
		slog.String("outcome", string(outcome)),
	)
}

func (r *Recorder) RecordCacheStore(fingerprint string) {
	r.logger.Debug("cached result", slog.String(string(AttrFingerprint), fingerprint))
}

func (r *Recorder) RecordCacheRemoval(reason RemovalReason, count int) {
	metrics.RecordCacheRemoval(string(reason), count)
	r.logger.Info("removed cached entries",
		slog.String("reason", string(reason)),
		slog.Int("count", count),
	)
}

func (r *Recorder) RecordUpload(event UploadEvent) {
	metrics.RecordUpload(event.Bucket, string(event.Outcome), event.Duration)

	args := []any{
		slog.String(string(AttrBucket), event.Bucket),
		slog.String(string(AttrPath), event.Path),
	}
	switch event.Outcome {
	case UploadSucceeded:
		r.logger.Info("uploaded image",
			append(args,
				slog.String(string(AttrURL), event.URL),
				slog.Int(string(AttrAttempts), event.Attempts),
				slog.Duration("duration", event.Duration),
			)...,
		)
	case UploadSkipped:
		r.logger.Debug("upload skipped", append(args, slog.String("reason", event.Reason))...)
	default:
		r.logger.Warn("upload failed",
			append(args,
				slog.Int(string(AttrAttempts), event.Attempts),
				slog.Duration("duration", event.Duration),
			)...,
		)
	}
}

func (r *Recorder) RecordClassification(fingerprint string, duration time.Duration, success bool) {
	metrics.RecordClassification(success)
	r.logger.Debug("classified image",
		slog.String(string(AttrFingerprint), fingerprint),
		slog.Duration("duration", duration),
		slog.Bool("success", success),
	)
}

func (r *Recorder) RecordNotice(packageName string, message string, attrs []Attribute) {
	args := append([]any{slog.String("package", packageName)}, attrsToArgs(attrs)...)
	r.logger.Info(message, args...)
}

func attrsToArgs(attrs []Attribute) []any {
	args := make([]any, 0, len(attrs))
	for _, a := range attrs {
		args = append(args, slog.String(string(a.Key), a.Value))
	}
	return args
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)
	RecordCacheLookup(fingerprint string, outcome CacheOutcome)
	RecordCacheStore(fingerprint string)
	RecordCacheRemoval(reason RemovalReason, count int)
	RecordUpload(event UploadEvent)
	RecordClassification(fingerprint string, duration time.Duration, success bool)
	RecordNotice(packageName string, message string, attrs []Attribute)
}

// NoopSink, struct that implements MetadataSink but does nothing
// Callers (or tests) decide whether to inject Recorder or NoopSink
// Purpose is to make metadata orthogonal

type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	details string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordCacheLookup(fingerprint string, outcome CacheOutcome) {}

func (n *NoopSink) RecordCacheStore(fingerprint string) {}

func (n *NoopSink) RecordCacheRemoval(reason RemovalReason, count int) {}

func (n *NoopSink) RecordUpload(event UploadEvent) {}

func (n *NoopSink) RecordClassification(fingerprint string, duration time.Duration, success bool) {}

func (n *NoopSink) RecordNotice(packageName string, message string, attrs []Attribute) {}
