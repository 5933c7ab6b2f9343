package logo

import "time"

// Result is the outcome of classifying one candidate logo image.
// It is a value object: caches and sinks store it as-is.
type Result struct {
	// URL is the image source URL.
	URL         string  `json:"url"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
	// PageURL is the page the image was found on.
	PageURL   string `json:"page_url"`
	ImageHash string `json:"image_hash,omitempty"`
	// IsHeader marks images found inside a page header or navigation bar.
	IsHeader  bool      `json:"is_header"`
	RankScore float64   `json:"rank_score"`
	Timestamp time.Time `json:"timestamp"`
}

// CreatedAt is the moment the result was produced. Cache expiry is measured
// from it.
func (r Result) CreatedAt() time.Time {
	return r.Timestamp
}
