package upload

import "context"

// Client is the slice of an object-storage SDK the uploader needs.
// Implementations must be safe for concurrent use.
type Client interface {
	// From selects a bucket.
	From(bucket string) Bucket
}

type Bucket interface {
	// Upload stores data at path with the given content type.
	Upload(ctx context.Context, path string, data []byte, contentType string) error

	// PublicURL resolves the publicly reachable URL of path.
	PublicURL(path string) (string, error)
}

// ClientFactory builds a Client for an endpoint and API key.
// A nil ClientFactory tells the uploader that no storage SDK is available.
type ClientFactory func(endpoint string, apiKey string) (Client, error)
