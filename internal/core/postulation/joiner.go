// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/impulsa/internal/platform/ctxutil"
	"github.com/taibuivan/impulsa/internal/platform/metrics"
	"github.com/taibuivan/impulsa/pkg/slice"
)

// # Record Joiner

// Joiner fetches the postulations of several initiatives and joins them into
// augmented records.
type Joiner struct {
	repo          Repository
	fallbackImage string
	limit         int
}

// NewJoiner constructs a [Joiner]. limit bounds the concurrent fetches (0 means unbounded).
func NewJoiner(repo Repository, fallbackImage string, limit int) *Joiner {
	return &Joiner{repo: repo, fallbackImage: fallbackImage, limit: limit}
}

/*
Join fetches the postulations of every initiative concurrently.

The join is best effort: an initiative whose fetch fails contributes nothing
and the failure is only logged. The result is flattened in the order of
initiativeIDs, whatever order the fetches complete in.
*/
func (joiner *Joiner) Join(ctx context.Context, initiativeIDs []int64) []Augmented {
	logger := ctxutil.GetLogger(ctx)
	results := make([][]Augmented, len(initiativeIDs))

	// Branches never return an error, so one failure cannot cancel the others.
	var group errgroup.Group
	if joiner.limit > 0 {
		group.SetLimit(joiner.limit)
	}

	for index, initiativeID := range initiativeIDs {
		group.Go(func() error {
			raw, err := joiner.repo.ListByInitiative(ctx, initiativeID)
			if err != nil {
				logger.Debug("postulations_fetch_failed",
					slog.Int64("initiative_id", initiativeID),
					slog.Any("error", err),
				)
				metrics.JoinBranchFailures.Inc()
				results[index] = []Augmented{}
				return nil
			}

			results[index] = slice.Map(raw, func(postulation Postulation) Augmented {
				return Augment(postulation, joiner.fallbackImage)
			})
			return nil
		})
	}

	_ = group.Wait()
	return slice.Flatten(results)
}
