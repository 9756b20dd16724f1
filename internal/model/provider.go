package model

import (
	"context"
	"time"
)

// StepProvider reads step totals from the external health data source.
// Authorization is a prerequisite the engine checks but does not manage:
// an unauthorized provider reports ErrProviderUnavailable and the engine
// treats totals as 0.
type StepProvider interface {
	FetchCumulativeSteps(ctx context.Context, from, to time.Time) (int64, error)
	FetchTodaySteps(ctx context.Context) (int64, error)
}
