package analyzer_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rohmanhakim/logo-crawler/internal/analyzer"
	"github.com/rohmanhakim/logo-crawler/internal/logo"
	"github.com/stretchr/testify/mock"
)

var errNotALogo = errors.New("model rejected image")

type classifierMock struct {
	mock.Mock
}

func (c *classifierMock) Classify(ctx context.Context, image analyzer.Image) (logo.Result, error) {
	args := c.Called(ctx, image)
	return args.Get(0).(logo.Result), args.Error(1)
}

// countingClassifier scores every image and fails for URLs listed in fail.
type countingClassifier struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	delay    time.Duration
	release  chan struct{}
	fail     map[string]bool
}

func (c *countingClassifier) Classify(ctx context.Context, image analyzer.Image) (logo.Result, error) {
	c.calls.Add(1)
	current := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		seen := c.maxSeen.Load()
		if current <= seen || c.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}

	if c.release != nil {
		select {
		case <-c.release:
		case <-ctx.Done():
			return logo.Result{}, ctx.Err()
		}
	}
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if c.fail[image.URL] {
		return logo.Result{}, errNotALogo
	}
	return logo.Result{
		Confidence:  0.9,
		Description: "logo of " + image.URL,
		RankScore:   1.0,
	}, nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
