// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package initiative

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/taibuivan/impulsa/internal/platform/apperr"
	"github.com/taibuivan/impulsa/internal/platform/constants"
	"github.com/taibuivan/impulsa/internal/platform/mutation"
	"github.com/taibuivan/impulsa/internal/platform/notify"
	"github.com/taibuivan/impulsa/internal/platform/querycache"
)

// Mutation kinds.
const (
	KindDelete = "delete_initiative"
)

// User-facing messages.
const (
	MessageLoadFailed   = "No se pudieron cargar las iniciativas"
	MessageDeleteFailed = "No se pudo eliminar la iniciativa"
)

// # Service Layer

// Service orchestrates reads and deletions of initiatives over the shared cache.
type Service struct {
	repo        Repository
	cache       *querycache.Cache
	coordinator *mutation.Coordinator
	pager       *Pager
	logger      *slog.Logger
}

// NewService constructs a new initiative [Service].
func NewService(repo Repository, cache *querycache.Cache, coordinator *mutation.Coordinator, fanoutLimit int, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		cache:       cache,
		coordinator: coordinator,
		pager:       NewPager(repo, cache, fanoutLimit),
		logger:      logger,
	}
}

// AdminKey is the cache prefix of the admin table pages, shared by every user.
func AdminKey() querycache.Key {
	return querycache.NewKey(constants.CachePrefixInitiatives, "admin")
}

// MineKey is the cache key of the initiatives owned by userID.
func MineKey(userID string) querycache.Key {
	return querycache.NewKey(constants.CachePrefixInitiatives, "mine", userID)
}

/*
ListMine returns the initiatives owned by the caller.

Parameters:
  - ctx: context.Context (carries the caller's access token)
  - userID: string (scopes the cache entry)

Returns:
  - []Initiative: owned initiatives, drafts included
  - error: querycache.ErrAborted, or UPSTREAM_ERROR
*/
func (service *Service) ListMine(ctx context.Context, userID string) ([]Initiative, error) {
	data, err := service.cache.Query(ctx, MineKey(userID), func(ctx context.Context) (any, error) {
		return service.repo.ListMine(ctx)
	})
	if err != nil {
		return nil, loadError(err)
	}
	return data.([]Initiative), nil
}

/*
Select returns the admin table rows for state.

Returns:
  - Selection: the page to render
  - error: querycache.ErrAborted, or UPSTREAM_ERROR when any page failed
*/
func (service *Service) Select(ctx context.Context, state PageState) (Selection, error) {
	selection, err := service.pager.Select(ctx, state)
	if err != nil {
		return Selection{}, loadError(err)
	}
	return selection, nil
}

/*
DeleteInitiative removes an initiative optimistically from the caller's list
and from the cached admin pages before asking the platform to delete it.
Admin page fetches started by other users keep running.

On failure every untouched listing is restored exactly and sink receives an
error notification. On success nav is asked to return to the owner's list. In both
cases the listings are marked stale once the call settles.

Returns:
  - mutation.Status: the settled status
  - error: CONFLICT while the same deletion is pending, querycache.ErrAborted, or UPSTREAM_ERROR
*/
func (service *Service) DeleteInitiative(ctx context.Context, userID string, id int64, sink notify.Sink, nav notify.Navigator) (mutation.Status, error) {
	status, err := service.coordinator.Run(ctx, mutation.Mutation{
		Kind:   KindDelete,
		Owner:  userID,
		Target: strconv.FormatInt(id, 10),
		Remote: func(ctx context.Context) error {
			return service.repo.Delete(ctx, id)
		},
		Optimistic: &mutation.Optimistic{
			Prefix: MineKey(userID),
			Shared: []querycache.Key{AdminKey()},
			Apply: func(data any) any {
				return Without(data, id)
			},
		},
		FailureMessage: MessageDeleteFailed,
		OnSuccess: func(context.Context) {
			if nav != nil {
				nav.Navigate(constants.RouteMyInitiatives)
			}
		},
		Sink: sink,
	})

	if errors.Is(err, mutation.ErrInFlight) {
		return status, apperr.Conflict("La iniciativa ya se está eliminando")
	}
	return status, err
}

// DeleteStatus reports the state of the deletion of id started by userID.
func (service *Service) DeleteStatus(userID string, id int64) mutation.Status {
	return service.coordinator.Status(KindDelete, userID, strconv.FormatInt(id, 10))
}

func loadError(err error) error {
	if errors.Is(err, querycache.ErrAborted) {
		return err
	}
	return apperr.Upstream(MessageLoadFailed, err)
}
