package metadata

import (
	"time"
)

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause MUST NOT be used for retry or fallback decisions.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

  - The failure does not map cleanly to any known category.
  - Unclassified third-party library failures.

# CauseNetworkFailure

  - Failure caused by network transport or remote availability.
  - Upload timeouts, connection resets, open circuit breaker.

# CauseAuthFailure

  - The remote service rejected the credentials.

# CauseContentInvalid

  - Input could not be processed meaningfully.
  - Empty image data, classifier rejecting an image.

# CauseStorageFailure

  - The object store accepted the connection but failed the operation.

# CauseConfigInvalid

  - The component was handed configuration it cannot use.
  - Malformed storage endpoint.
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseAuthFailure
	CauseContentInvalid
	CauseStorageFailure
	CauseConfigInvalid
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CauseAuthFailure:
		return "auth_failure"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	case CauseConfigInvalid:
		return "config_invalid"
	default:
		return "unknown"
	}
}

type CacheOutcome string

const (
	CacheHit     CacheOutcome = "hit"
	CacheMiss    CacheOutcome = "miss"
	CacheExpired CacheOutcome = "expired"
)

type RemovalReason string

const (
	RemovalClear RemovalReason = "clear"
	RemovalSweep RemovalReason = "sweep"
)

type UploadOutcome string

const (
	UploadSucceeded UploadOutcome = "success"
	UploadFailed    UploadOutcome = "failure"
	UploadSkipped   UploadOutcome = "skipped"
)

// UploadEvent describes one call to the uploader, whatever its outcome.
type UploadEvent struct {
	Bucket   string
	Path     string
	Outcome  UploadOutcome
	URL      string
	Attempts int
	Duration time.Duration
	// Reason explains skipped uploads.
	Reason string
}

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL         AttributeKey = "url"
	AttrPageURL     AttributeKey = "page_url"
	AttrFingerprint AttributeKey = "fingerprint"
	AttrBucket      AttributeKey = "bucket"
	AttrPath        AttributeKey = "path"
	AttrEndpoint    AttributeKey = "endpoint"
	AttrAttempts    AttributeKey = "attempts"
)
