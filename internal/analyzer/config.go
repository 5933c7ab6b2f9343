package analyzer

import (
	"github.com/rohmanhakim/logo-crawler/internal/config"
	"github.com/rohmanhakim/logo-crawler/internal/logo"
	"github.com/rohmanhakim/logo-crawler/internal/metadata"
	"github.com/rohmanhakim/logo-crawler/internal/resultcache"
)

// NewFromConfig builds an analyzer and its result cache from cfg. The cache
// is returned too so the caller can Sweep or Clear it.
func NewFromConfig(
	cfg config.Config,
	classifier Classifier,
	sink metadata.MetadataSink,
	opts ...Option,
) (*Analyzer, *resultcache.Cache[logo.Result]) {
	cache := resultcache.New[logo.Result](
		cfg.CacheTTL(),
		resultcache.WithMetadataSink(sink),
	)
	base := []Option{
		WithHashAlgo(cfg.HashAlgo()),
		WithConcurrency(cfg.Concurrency()),
		WithMetadataSink(sink),
	}
	return NewAnalyzer(cache, classifier, append(base, opts...)...), cache
}
