package resultcache_test

import (
	"sync"
	"time"

	"github.com/rohmanhakim/logo-crawler/internal/logo"
	"github.com/rohmanhakim/logo-crawler/internal/metadata"
	"github.com/stretchr/testify/mock"
)

// fakeClock is a settable clock for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newResult(url string, confidence float64, hash string, createdAt time.Time) logo.Result {
	return logo.Result{
		URL:         url,
		Confidence:  confidence,
		Description: "Test logo",
		PageURL:     "https://example.com",
		ImageHash:   hash,
		IsHeader:    true,
		RankScore:   confidence * 10,
		Timestamp:   createdAt,
	}
}

type sinkMock struct {
	mock.Mock
	metadata.NoopSink
}

func (s *sinkMock) RecordCacheLookup(fingerprint string, outcome metadata.CacheOutcome) {
	s.Called(fingerprint, outcome)
}

func (s *sinkMock) RecordCacheRemoval(reason metadata.RemovalReason, count int) {
	s.Called(reason, count)
}
