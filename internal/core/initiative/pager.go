// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package initiative

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/impulsa/internal/platform/constants"
	"github.com/taibuivan/impulsa/internal/platform/ctxutil"
	"github.com/taibuivan/impulsa/internal/platform/querycache"
	"github.com/taibuivan/impulsa/pkg/pagination"
	"github.com/taibuivan/impulsa/pkg/slice"
)

// # Page State

// StateFilter is the admin table filter: every initiative, or a single state.
type StateFilter string

// FilterAll is the unfiltered view.
const FilterAll StateFilter = "all"

// ParseStateFilter accepts "", "all" or any [State].
func ParseStateFilter(value string) (StateFilter, error) {
	if value == "" || StateFilter(value) == FilterAll {
		return FilterAll, nil
	}
	state, err := ParseState(value)
	if err != nil {
		return "", err
	}
	return StateFilter(state), nil
}

// Mode is how the admin table is paged.
type Mode string

const (
	// ModeServer fetches one page per (index, size) and trusts the server total.
	ModeServer Mode = "server"
	// ModeLocal fetches every page, filters locally and pages the result itself.
	ModeLocal Mode = "local"
)

// Mode returns the paging mode the filter requires. The platform API cannot
// filter by state, so any specific state needs the whole listing.
func (filter StateFilter) Mode() Mode {
	if filter == FilterAll {
		return ModeServer
	}
	return ModeLocal
}

// PageState is the admin table position of one user.
type PageState struct {
	Filter StateFilter `json:"filter"`
	Index  int         `json:"page"`
	Size   int         `json:"size"`
}

// Cursor holds the [PageState] of one user across requests.
type Cursor struct {
	mu    sync.Mutex
	state PageState
}

// NewCursor starts at the first unfiltered page.
func NewCursor(size int) *Cursor {
	return &Cursor{state: PageState{Filter: FilterAll, Index: pagination.FirstPage, Size: size}}
}

/*
Apply moves the cursor and returns the resulting state.

A filter change always restarts at the first page (which covers every switch
between server and local mode); the requested page index is only honoured
while the filter stays the same.
*/
func (cursor *Cursor) Apply(filter StateFilter, params pagination.Params) PageState {
	cursor.mu.Lock()
	defer cursor.mu.Unlock()

	if params.Size > 0 {
		cursor.state.Size = params.Size
	}

	if filter != cursor.state.Filter {
		cursor.state.Filter = filter
		cursor.state.Index = pagination.FirstPage
		return cursor.state
	}

	if params.HasPage {
		cursor.state.Index = params.Page
	}
	return cursor.state
}

// State returns the current position.
func (cursor *Cursor) State() PageState {
	cursor.mu.Lock()
	defer cursor.mu.Unlock()
	return cursor.state
}

// # Selector

// Selection is one rendered page of the admin table.
type Selection struct {
	Mode       Mode         `json:"mode"`
	Rows       []Initiative `json:"rows"`
	TotalCount int          `json:"totalCount"`
	Page       int          `json:"page"`
	Size       int          `json:"size"`
	TotalPages int          `json:"totalPages"`
}

// Pager chooses between server paging and local aggregation.
type Pager struct {
	repo        Repository
	cache       *querycache.Cache
	fanoutLimit int
}

// NewPager constructs a [Pager]. fanoutLimit bounds the parallel page fetches of local mode.
func NewPager(repo Repository, cache *querycache.Cache, fanoutLimit int) *Pager {
	return &Pager{repo: repo, cache: cache, fanoutLimit: fanoutLimit}
}

/*
Select returns the rows for state.

Returns:
  - Selection: rows, total and the effective (clamped) page index
  - error: the fetch error, or querycache.ErrAborted when ctx was cancelled
*/
func (pager *Pager) Select(ctx context.Context, state PageState) (Selection, error) {
	if state.Filter.Mode() == ModeServer {
		return pager.selectServer(ctx, state)
	}
	return pager.selectLocal(ctx, state)
}

func (pager *Pager) selectServer(ctx context.Context, state PageState) (Selection, error) {
	key := querycache.NewKey(constants.CachePrefixInitiatives, "admin", "page",
		strconv.Itoa(state.Index), strconv.Itoa(state.Size))

	data, err := pager.cache.Query(ctx, key, func(ctx context.Context) (any, error) {
		return pager.repo.ListPage(ctx, state.Index, state.Size)
	})
	if err != nil {
		return Selection{}, err
	}

	page := data.(Page)
	return Selection{
		Mode:       ModeServer,
		Rows:       page.Content,
		TotalCount: page.TotalElements,
		Page:       state.Index,
		Size:       state.Size,
		TotalPages: page.TotalPages,
	}, nil
}

func (pager *Pager) selectLocal(ctx context.Context, state PageState) (Selection, error) {
	key := querycache.NewKey(constants.CachePrefixInitiatives, "admin", "all", strconv.Itoa(state.Size))

	data, err := pager.cache.Query(ctx, key, func(ctx context.Context) (any, error) {
		return pager.fetchAll(ctx, state.Size)
	})
	if err != nil {
		return Selection{}, err
	}

	wanted := State(state.Filter)
	rows := slice.Filter(data.([]Initiative), func(initiative Initiative) bool {
		return initiative.State == wanted
	})

	index := pagination.Clamp(state.Index, len(rows), state.Size)
	return Selection{
		Mode:       ModeLocal,
		Rows:       pagination.Window(rows, index, state.Size),
		TotalCount: len(rows),
		Page:       index,
		Size:       state.Size,
		TotalPages: pagination.TotalPages(len(rows), state.Size),
	}, nil
}

// fetchAll loads page 0 to learn the page count, then every other page in
// parallel. Any failing page fails the whole aggregate.
func (pager *Pager) fetchAll(ctx context.Context, size int) ([]Initiative, error) {
	first, err := pager.repo.ListPage(ctx, pagination.FirstPage, size)
	if err != nil {
		return nil, err
	}

	pages := make([][]Initiative, max(first.TotalPages, 1))
	pages[0] = first.Content

	group, groupCtx := errgroup.WithContext(ctx)
	if pager.fanoutLimit > 0 {
		group.SetLimit(pager.fanoutLimit)
	}

	for index := 1; index < first.TotalPages; index++ {
		group.Go(func() error {
			page, err := pager.repo.ListPage(groupCtx, index, size)
			if err != nil {
				return err
			}
			pages[index] = page.Content
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).Debug("initiatives_aggregated",
		slog.Int("pages", len(pages)),
		slog.Int("reported_total", first.TotalElements),
	)

	return slice.Flatten(pages), nil
}
