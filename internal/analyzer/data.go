package analyzer

// Image is one candidate logo handed over by the crawler.
type Image struct {
	// URL is the image source URL.
	URL string
	// PageURL is the page the image was found on.
	PageURL string
	// Data is the raw image content. Its fingerprint is the cache key.
	Data     []byte
	IsHeader bool
}

const DefaultConcurrency = 4
