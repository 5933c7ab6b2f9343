package analyzer

import (
	"fmt"

	"github.com/rohmanhakim/logo-crawler/internal/metadata"
	"github.com/rohmanhakim/logo-crawler/pkg/failure"
)

type AnalyzerErrorCause string

const (
	ErrCauseEmptyImage        AnalyzerErrorCause = "empty image"
	ErrCauseFingerprint       AnalyzerErrorCause = "fingerprint failed"
	ErrCauseClassifierFailure AnalyzerErrorCause = "classifier failed"
	ErrCauseCanceled          AnalyzerErrorCause = "canceled"
)

type AnalyzerError struct {
	Message   string
	Retryable bool
	Cause     AnalyzerErrorCause
	Err       error
}

func (e *AnalyzerError) Error() string {
	return fmt.Sprintf("analyzer error: %s: %s", e.Cause, e.Message)
}

func (e *AnalyzerError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *AnalyzerError) Unwrap() error {
	return e.Err
}

// mapAnalyzerErrorToMetadataCause is observational only.
func mapAnalyzerErrorToMetadataCause(err *AnalyzerError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseEmptyImage:
		return metadata.CauseContentInvalid
	case ErrCauseFingerprint:
		return metadata.CauseConfigInvalid
	default:
		return metadata.CauseUnknown
	}
}
