package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rohmanhakim/logo-crawler/pkg/failure"
)

// GetFileExtension extracts the file extension from a path, or empty string if none
func GetFileExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	// Remove the leading dot
	return strings.TrimPrefix(ext, ".")
}

// EnsureExtension appends ".ext" to name unless it already ends with that
// extension (case-insensitive).
func EnsureExtension(name string, ext string) string {
	if strings.EqualFold(GetFileExtension(name), ext) {
		return name
	}
	return name + "." + ext
}

// ReadFile loads a whole file into memory. Missing and empty files are
// reported as distinct causes.
func ReadFile(path string) ([]byte, failure.ClassifiedError) {
	data, err := os.ReadFile(path)
	if err != nil {
		cause := ErrCauseReadFailure
		if errors.Is(err, fs.ErrNotExist) {
			cause = ErrCauseNotFound
		}
		return nil, &FileError{
			Message:   fmt.Sprintf("%v", err),
			Retryable: false,
			Cause:     cause,
			Path:      path,
		}
	}
	if len(data) == 0 {
		return nil, &FileError{
			Message:   "file has no content",
			Retryable: false,
			Cause:     ErrCauseEmptyFile,
			Path:      path,
		}
	}
	return data, nil
}
