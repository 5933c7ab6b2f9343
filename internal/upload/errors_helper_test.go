package upload

import (
	"context"

	"github.com/sony/gobreaker/v2"
)

func contextDeadline() error { return context.DeadlineExceeded }

func contextCanceled() error { return context.Canceled }

func breakerOpen() error { return gobreaker.ErrOpenState }
