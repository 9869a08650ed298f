package module

import (
	"context"

	"enscheck/internal/platform/logger"
	"enscheck/internal/services/resolve/domain"
)

// ProgressLogger logs running totals every Every batches (every batch when <= 1)
type ProgressLogger struct {
	Every int
}

// Progress implements domain.Observer
func (p ProgressLogger) Progress(ctx context.Context, pr domain.Progress) {
	if pr.Finished {
		return
	}
	if p.Every > 1 && pr.Seq%p.Every != 0 {
		return
	}
	logger.C(ctx).Info().
		Int("batch", pr.Seq).
		Int("processed", pr.Stats.Processed).
		Int("unregistered", pr.Stats.Unregistered).
		Int("expired", pr.Stats.Expired).
		Int("dropped", pr.Stats.Dropped).
		Dur("elapsed", pr.Elapsed).
		Msg("resolve: progress")
}
