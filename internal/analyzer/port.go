package analyzer

import (
	"context"

	"github.com/rohmanhakim/logo-crawler/internal/logo"
)

// Classifier decides whether an image is a logo. Implementations wrap the
// vision model; the analyzer only needs this one call.
type Classifier interface {
	Classify(ctx context.Context, image Image) (logo.Result, error)
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(ctx context.Context, image Image) (logo.Result, error)

func (f ClassifierFunc) Classify(ctx context.Context, image Image) (logo.Result, error) {
	return f(ctx, image)
}
