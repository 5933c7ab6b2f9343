package upload

import (
	"context"
	"errors"
	"fmt"

	"github.com/rohmanhakim/logo-crawler/internal/metadata"
	"github.com/rohmanhakim/logo-crawler/pkg/failure"
	"github.com/sony/gobreaker/v2"
)

type UploadErrorCause string

const (
	ErrCauseInvalidInput    UploadErrorCause = "invalid input"
	ErrCauseTimeout         UploadErrorCause = "timeout"
	ErrCauseCanceled        UploadErrorCause = "canceled"
	ErrCauseRemoteFailure   UploadErrorCause = "remote failure"
	ErrCauseEmptyPublicURL  UploadErrorCause = "empty public url"
	ErrCauseCircuitOpen     UploadErrorCause = "circuit open"
	ErrCauseClientPanic     UploadErrorCause = "client panic"
	ErrCauseInvalidEndpoint UploadErrorCause = "invalid endpoint"
	ErrCauseClientInit      UploadErrorCause = "client init failed"
)

type UploadError struct {
	Message   string
	Retryable bool
	Cause     UploadErrorCause
	Err       error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload error: %s: %s", e.Cause, e.Message)
}

func (e *UploadError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *UploadError) IsRetryable() bool {
	return e.Retryable
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// classifyRemoteError wraps an error returned while talking to the store.
func classifyRemoteError(err error, step string) *UploadError {
	var uploadErr *UploadError
	if errors.As(err, &uploadErr) {
		return uploadErr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &UploadError{
			Message:   step + ": " + err.Error(),
			Retryable: true,
			Cause:     ErrCauseTimeout,
			Err:       err,
		}
	case errors.Is(err, context.Canceled):
		return &UploadError{
			Message:   step + ": " + err.Error(),
			Retryable: false,
			Cause:     ErrCauseCanceled,
			Err:       err,
		}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &UploadError{
			Message:   step + ": " + err.Error(),
			Retryable: false,
			Cause:     ErrCauseCircuitOpen,
			Err:       err,
		}
	default:
		return &UploadError{
			Message:   step + ": " + err.Error(),
			Retryable: true,
			Cause:     ErrCauseRemoteFailure,
			Err:       err,
		}
	}
}

// mapUploadErrorToMetadataCause maps upload-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapUploadErrorToMetadataCause(err *UploadError) metadata.ErrorCause {
	if err == nil {
		return metadata.CauseUnknown
	}
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseCircuitOpen:
		return metadata.CauseNetworkFailure
	case ErrCauseRemoteFailure, ErrCauseEmptyPublicURL:
		return metadata.CauseStorageFailure
	case ErrCauseInvalidInput:
		return metadata.CauseContentInvalid
	case ErrCauseInvalidEndpoint:
		return metadata.CauseConfigInvalid
	default:
		return metadata.CauseUnknown
	}
}
