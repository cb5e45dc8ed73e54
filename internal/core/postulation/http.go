// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package postulation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/impulsa/internal/platform/mutation"
	"github.com/taibuivan/impulsa/internal/platform/notify"
	requestutil "github.com/taibuivan/impulsa/internal/platform/request"
	"github.com/taibuivan/impulsa/internal/platform/respond"
	"github.com/taibuivan/impulsa/internal/platform/validate"
)

// Sessions exposes the per-user state the handler needs.
type Sessions interface {
	// Board returns the dashboard controls of userID.
	Board(userID string) *Board
	// Sink returns where notifications for userID are delivered.
	Sink(userID string) notify.Sink
}

// # Handler Implementation

// Handler implements the HTTP layer of the postulations dashboard.
type Handler struct {
	service  *Service
	sessions Sessions
}

// NewHandler constructs a new postulation [Handler].
func NewHandler(service *Service, sessions Sessions) *Handler {
	return &Handler{service: service, sessions: sessions}
}

// Routes returns the dashboard endpoints. Authentication is required by the mounting router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Views & Controls
	router.Get("/view", handler.getView)
	router.Get("/state", handler.getState)
	router.Put("/query", handler.setQuery)
	router.Post("/sort", handler.toggleSort)

	// ## Mutations
	router.Post("/{id}/accept", handler.accept)
	router.Get("/{id}/status", handler.mutationStatus)
	router.Route("/selection", func(selection chi.Router) {
		selection.Put("/", handler.selectPostulation)
		selection.Delete("/", handler.deleteSelected)
		selection.Post("/dismiss", handler.dismissDialog)
	})

	// ## Applied Flags
	router.Get("/applied/{initiativeID}", handler.getApplied)
	router.Put("/applied/{initiativeID}", handler.markApplied)

	return router
}

// # Request & Response Bodies

// QueryRequest sets the search text and filter label.
type QueryRequest struct {
	Query  string `json:"q"`
	Filter string `json:"filter"`
}

// SortRequest toggles the sort on a field.
type SortRequest struct {
	Field string `json:"field"`
}

// SelectRequest selects a postulation for deletion.
type SelectRequest struct {
	ID int64 `json:"id"`
}

// ViewResponse is the derived view together with the controls that produced it.
type ViewResponse struct {
	View  View       `json:"view"`
	State BoardState `json:"state"`
}

// MutationResponse is the settled status of a mutation.
type MutationResponse struct {
	Status mutation.Status `json:"status"`
}

// # View Endpoints

/*
GET /api/v1/postulations/view.

Description: Joins the postulations of the caller's initiatives and derives the
current view. Optional q and filter parameters update the controls first.

Request:
  - q: string (live search)
  - filter: string (filter label)

Response:
  - 200: ViewResponse
  - 204: the request was aborted
  - 400: VALIDATION_ERROR: Unknown filter label
  - 502: UPSTREAM_ERROR
*/
func (handler *Handler) getView(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	board := handler.sessions.Board(userID)
	queryParams := request.URL.Query()

	if queryParams.Has("filter") {
		label, err := ParseFilterLabel(queryParams.Get("filter"))
		if err != nil {
			respond.Error(writer, request, validate.RequiredError("filter", "Unknown filter label"))
			return
		}
		board.SelectFilter(label)
	}
	if queryParams.Has("q") {
		board.SetQuery(queryParams.Get("q"))
	}

	state := board.State()
	view, err := handler.service.View(request.Context(), userID, state)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ViewResponse{View: view, State: state})
}

/*
GET /api/v1/postulations/state.

Response:
  - 200: BoardState
*/
func (handler *Handler) getState(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, handler.sessions.Board(userID).State())
}

/*
PUT /api/v1/postulations/query.

Request (Body):
  - QueryRequest

Response:
  - 200: BoardState
  - 400: VALIDATION_ERROR: Unknown filter label
*/
func (handler *Handler) setQuery(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body QueryRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	label, err := ParseFilterLabel(body.Filter)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError("filter", "Unknown filter label"))
		return
	}

	board := handler.sessions.Board(userID)
	board.SetQuery(body.Query)
	board.SelectFilter(label)

	respond.OK(writer, board.State())
}

/*
POST /api/v1/postulations/sort.

Description: Sorting twice by the same field flips the direction; another
field starts ascending.

Request (Body):
  - SortRequest

Response:
  - 200: Sort
  - 400: VALIDATION_ERROR: Unknown field
*/
func (handler *Handler) toggleSort(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body SortRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("field", body.Field)
	field, err := ParseGroupKey(body.Field)
	validator.Custom("field", err != nil, "Unknown sort field")
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, handler.sessions.Board(userID).ToggleSort(field))
}

// # Mutation Endpoints

/*
POST /api/v1/postulations/{id}/accept.

Response:
  - 200: MutationResponse
  - 409: CONFLICT: Acceptance already pending
  - 502: UPSTREAM_ERROR: The platform refused
*/
func (handler *Handler) accept(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	status, err := handler.service.Accept(request.Context(), userID, id, handler.sessions.Sink(userID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MutationResponse{Status: status})
}

/*
GET /api/v1/postulations/{id}/status.

Description: Only mutations started by the caller are visible.

Response:
  - 200: {accept, delete} mutation statuses
*/
func (handler *Handler) mutationStatus(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]mutation.Status{
		"accept": handler.service.AcceptStatus(userID, id),
		"delete": handler.service.DeleteStatus(userID, id),
	})
}

/*
PUT /api/v1/postulations/selection.

Description: Selects one of the caller's postulations and opens the
confirmation dialog.

Response:
  - 200: BoardState
  - 404: NOT_FOUND: Not one of the caller's postulations
*/
func (handler *Handler) selectPostulation(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body SelectRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}
	validator := &validate.Validator{}
	if err := validator.Custom("id", body.ID <= 0, "Must be a positive numeric identifier").Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Find(request.Context(), userID, body.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	board := handler.sessions.Board(userID)
	board.Select(record)
	respond.OK(writer, board.State())
}

/*
DELETE /api/v1/postulations/selection.

Description: Deletes the selected postulation. Cached listings drop it
immediately and are restored if the platform refuses.

Response:
  - 200: MutationResponse
  - 400: VALIDATION_ERROR: Nothing selected
  - 409: CONFLICT: Deletion already pending
  - 502: UPSTREAM_ERROR: Deletion failed and was rolled back
*/
func (handler *Handler) deleteSelected(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	board := handler.sessions.Board(userID)
	if _, ok := board.Selected(); !ok {
		respond.Error(writer, request, validate.RequiredError("selection", "No postulation selected"))
		return
	}

	status, err := handler.service.DeleteSelected(request.Context(), userID, board, handler.sessions.Sink(userID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, MutationResponse{Status: status})
}

/*
POST /api/v1/postulations/selection/dismiss.

Response:
  - 200: BoardState
*/
func (handler *Handler) dismissDialog(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	board := handler.sessions.Board(userID)
	board.CloseDialog()
	respond.OK(writer, board.State())
}

// # Applied Flag Endpoints

/*
GET /api/v1/postulations/applied/{initiativeID}.

Response:
  - 200: {applied: bool} for the caller
*/
func (handler *Handler) getApplied(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	initiativeID, err := requestutil.ID(request, "initiativeID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	applied, err := handler.service.IsApplied(request.Context(), userID, initiativeID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"applied": applied})
}

/*
PUT /api/v1/postulations/applied/{initiativeID}.

Description: Records that the caller applied to the initiative.

Response:
  - 204: Recorded
*/
func (handler *Handler) markApplied(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	initiativeID, err := requestutil.ID(request, "initiativeID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.MarkApplied(request.Context(), userID, initiativeID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
