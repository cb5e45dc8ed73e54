// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package initiative_test

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/taibuivan/impulsa/internal/core/initiative"
)

// fakeRepository is an in-memory [initiative.Repository].
type fakeRepository struct {
	mine     []initiative.Initiative
	listPage func(ctx context.Context, page, size int) (initiative.Page, error)
	delete   func(ctx context.Context, id int64) error

	mineCalls atomic.Int32
	pageCalls atomic.Int32
}

func (repo *fakeRepository) ListMine(context.Context) ([]initiative.Initiative, error) {
	repo.mineCalls.Add(1)
	return repo.mine, nil
}

func (repo *fakeRepository) ListPage(ctx context.Context, page, size int) (initiative.Page, error) {
	repo.pageCalls.Add(1)
	return repo.listPage(ctx, page, size)
}

func (repo *fakeRepository) Delete(ctx context.Context, id int64) error {
	if repo.delete == nil {
		return nil
	}
	return repo.delete(ctx, id)
}

// pagedCatalog serves rows as zero-based pages of the requested size.
func pagedCatalog(rows []initiative.Initiative) func(context.Context, int, int) (initiative.Page, error) {
	return func(_ context.Context, page, size int) (initiative.Page, error) {
		start := min(page*size, len(rows))
		end := min(start+size, len(rows))
		return initiative.Page{
			Content:       rows[start:end],
			TotalElements: len(rows),
			TotalPages:    (len(rows) + size - 1) / size,
			Size:          size,
			Number:        page,
		}, nil
	}
}

// catalog builds n initiatives cycling through proposal, approved and draft.
func catalog(n int) []initiative.Initiative {
	states := []initiative.State{initiative.StateProposal, initiative.StateApproved, initiative.StateDraft}
	rows := make([]initiative.Initiative, n)
	for i := range rows {
		rows[i] = initiative.Initiative{
			ID:    int64(i + 1),
			Title: "Iniciativa " + strconv.Itoa(i+1),
			State: states[i%len(states)],
		}
	}
	return rows
}
