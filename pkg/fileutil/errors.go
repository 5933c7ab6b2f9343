package fileutil

import (
	"fmt"

	"github.com/rohmanhakim/logo-crawler/pkg/failure"
)

type FileErrorCause string

const (
	ErrCauseNotFound    FileErrorCause = "file not found"
	ErrCauseReadFailure FileErrorCause = "read failed"
	ErrCauseEmptyFile   FileErrorCause = "empty file"
)

type FileError struct {
	Message   string
	Retryable bool
	Cause     FileErrorCause
	Path      string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file error: %s: %s", e.Cause, e.Path)
}

func (e *FileError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
