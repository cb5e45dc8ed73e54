// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/taibuivan/impulsa/internal/core/initiative"
	"github.com/taibuivan/impulsa/internal/platform/apperr"
	"github.com/taibuivan/impulsa/internal/platform/constants"
	"github.com/taibuivan/impulsa/internal/platform/ctxutil"
	"github.com/taibuivan/impulsa/internal/platform/mutation"
	"github.com/taibuivan/impulsa/internal/platform/notify"
	"github.com/taibuivan/impulsa/internal/platform/querycache"
	"github.com/taibuivan/impulsa/pkg/slice"
)

// Mutation kinds.
const (
	KindAccept = "accept_postulation"
	KindDelete = "delete_postulation"
)

// User-facing messages.
const (
	MessageLoadFailed   = "No se pudieron cargar las postulaciones"
	MessageAcceptFailed = "No se pudo aceptar la postulación"
	MessageDeleteFailed = "No se pudo eliminar la postulación"
	MessageAccepted     = "Postulación aceptada"
)

// InitiativeSource lists the initiatives owned by a user.
type InitiativeSource interface {
	ListMine(ctx context.Context, userID string) ([]initiative.Initiative, error)
}

// # Service Layer

// Service orchestrates the postulations dashboard over the shared cache.
type Service struct {
	repo        Repository
	initiatives InitiativeSource
	applied     AppliedStore
	cache       *querycache.Cache
	coordinator *mutation.Coordinator
	joiner      *Joiner
	deriver     *Deriver
	logger      *slog.Logger
}

// Options groups the dependencies of a [Service].
type Options struct {
	Repository    Repository
	Initiatives   InitiativeSource
	Applied       AppliedStore
	Cache         *querycache.Cache
	Coordinator   *mutation.Coordinator
	Deriver       *Deriver
	FallbackImage string
	FanoutLimit   int
	Logger        *slog.Logger
}

// NewService constructs a new postulation [Service].
func NewService(options Options) *Service {
	return &Service{
		repo:        options.Repository,
		initiatives: options.Initiatives,
		applied:     options.Applied,
		cache:       options.Cache,
		coordinator: options.Coordinator,
		joiner:      NewJoiner(options.Repository, options.FallbackImage, options.FanoutLimit),
		deriver:     options.Deriver,
		logger:      options.Logger,
	}
}

// FamilyKey is the cache prefix of every joined listing of userID.
func FamilyKey(userID string) querycache.Key {
	return querycache.NewKey(constants.CachePrefixPostulations, userID)
}

// RecordsKey is the cache key of the joined postulations of userID over initiativeIDs.
func RecordsKey(userID string, initiativeIDs []int64) querycache.Key {
	ids := slice.Map(initiativeIDs, func(id int64) string { return strconv.FormatInt(id, 10) })
	return querycache.NewKey(constants.CachePrefixPostulations, userID, strings.Join(ids, ","))
}

/*
Records returns the joined postulations received by the caller's non-draft initiatives.

Returns:
  - []Augmented: in initiative order
  - error: querycache.ErrAborted, or UPSTREAM_ERROR when the initiatives cannot be listed
*/
func (service *Service) Records(ctx context.Context, userID string) ([]Augmented, error) {
	initiatives, err := service.initiatives.ListMine(ctx, userID)
	if err != nil {
		return nil, err
	}
	initiativeIDs := initiative.EligibleIDs(initiatives)

	data, err := service.cache.Query(ctx, RecordsKey(userID, initiativeIDs), func(ctx context.Context) (any, error) {
		records := service.joiner.Join(ctx, initiativeIDs)
		// A cancelled join is incomplete, not empty.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return records, nil
	})
	if err != nil {
		if errors.Is(err, querycache.ErrAborted) {
			return nil, err
		}
		return nil, apperr.Upstream(MessageLoadFailed, err)
	}
	return data.([]Augmented), nil
}

// View derives the dashboard view of the caller for state.
func (service *Service) View(ctx context.Context, userID string, state BoardState) (View, error) {
	records, err := service.Records(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return service.deriver.Project(records, state.Query, state.Filter, state.Sort), nil
}

// Find returns the joined record with id among the caller's postulations.
func (service *Service) Find(ctx context.Context, userID string, id int64) (Augmented, error) {
	records, err := service.Records(ctx, userID)
	if err != nil {
		return Augmented{}, err
	}
	for _, record := range records {
		if record.ID == id {
			return record, nil
		}
	}
	return Augmented{}, apperr.NotFound("Postulation")
}

/*
Accept accepts a postulation. Nothing changes locally before the platform
confirms; on success every joined listing of userID is marked stale.

Returns:
  - mutation.Status: the settled status
  - error: CONFLICT while the same acceptance is pending, querycache.ErrAborted, or UPSTREAM_ERROR
*/
func (service *Service) Accept(ctx context.Context, userID string, id int64, sink notify.Sink) (mutation.Status, error) {
	status, err := service.coordinator.Run(ctx, mutation.Mutation{
		Kind:   KindAccept,
		Owner:  userID,
		Target: strconv.FormatInt(id, 10),
		Remote: func(ctx context.Context) error {
			return service.repo.Accept(ctx, id)
		},
		Invalidate:     []querycache.Key{FamilyKey(userID)},
		FailureMessage: MessageAcceptFailed,
		OnSuccess: func(context.Context) {
			if sink != nil {
				sink.Notify(MessageAccepted, notify.SeveritySuccess)
			}
		},
		Sink: sink,
	})
	return status, conflict(err, "La postulación ya se está aceptando")
}

/*
DeleteSelected deletes the postulation selected on board.

Every joined listing of userID drops the record before the platform is called
and is restored exactly if the call fails. Other users' listings and fetches
are left alone. On success the selection and its dialog
are cleared and the applicant may apply to the initiative again.

It panics when nothing is selected: callers must check [Board.Selected] first.
*/
func (service *Service) DeleteSelected(ctx context.Context, userID string, board *Board, sink notify.Sink) (mutation.Status, error) {
	record, ok := board.Selected()
	if !ok {
		panic("postulation: delete requested with no postulation selected")
	}

	status, err := service.coordinator.Run(ctx, mutation.Mutation{
		Kind:   KindDelete,
		Owner:  userID,
		Target: strconv.FormatInt(record.ID, 10),
		Remote: func(ctx context.Context) error {
			return service.repo.Delete(ctx, record.ID)
		},
		Optimistic: &mutation.Optimistic{
			Prefix: FamilyKey(userID),
			Apply: func(data any) any {
				return Without(data, record.ID)
			},
		},
		FailureMessage: MessageDeleteFailed,
		OnSuccess: func(ctx context.Context) {
			board.ClearSelection()
			service.clearApplied(ctx, record)
		},
		Sink: sink,
	})
	return status, conflict(err, "La postulación ya se está eliminando")
}

// clearApplied lets the applicant apply again. A failure here does not undo the deletion.
func (service *Service) clearApplied(ctx context.Context, record Augmented) {
	if service.applied == nil {
		return
	}
	applicantID := strconv.FormatInt(record.UserID, 10)
	if err := service.applied.Clear(context.WithoutCancel(ctx), applicantID, record.InitiativeID); err != nil {
		ctxutil.GetLogger(ctx).Warn("applied_flag_clear_failed",
			slog.Int64("postulation_id", record.ID),
			slog.Any("error", err),
		)
	}
}

// AcceptStatus reports the state of the acceptance of id started by userID.
func (service *Service) AcceptStatus(userID string, id int64) mutation.Status {
	return service.coordinator.Status(KindAccept, userID, strconv.FormatInt(id, 10))
}

// DeleteStatus reports the state of the deletion of id started by userID.
func (service *Service) DeleteStatus(userID string, id int64) mutation.Status {
	return service.coordinator.Status(KindDelete, userID, strconv.FormatInt(id, 10))
}

// # Applied Flags

// IsApplied reports whether userID has already applied to initiativeID.
func (service *Service) IsApplied(ctx context.Context, userID string, initiativeID int64) (bool, error) {
	applied, err := service.applied.IsApplied(ctx, userID, initiativeID)
	if err != nil {
		return false, apperr.Internal(err)
	}
	return applied, nil
}

// MarkApplied records that userID applied to initiativeID.
func (service *Service) MarkApplied(ctx context.Context, userID string, initiativeID int64) error {
	if err := service.applied.MarkApplied(ctx, userID, initiativeID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func conflict(err error, message string) error {
	if errors.Is(err, mutation.ErrInFlight) {
		return apperr.Conflict(message)
	}
	return err
}
