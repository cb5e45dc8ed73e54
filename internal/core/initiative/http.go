// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package initiative

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/impulsa/internal/platform/mutation"
	"github.com/taibuivan/impulsa/internal/platform/notify"
	requestutil "github.com/taibuivan/impulsa/internal/platform/request"
	"github.com/taibuivan/impulsa/internal/platform/respond"
	"github.com/taibuivan/impulsa/internal/platform/validate"
	"github.com/taibuivan/impulsa/pkg/pagination"
)

// Sessions exposes the per-user state the handler needs.
type Sessions interface {
	// Cursor returns the admin table position of userID.
	Cursor(userID string) *Cursor
	// Sink returns where notifications for userID are delivered.
	Sink(userID string) notify.Sink
}

// # Handler Implementation

// Handler implements the HTTP layer for initiative operations.
type Handler struct {
	service     *Service
	sessions    Sessions
	defaultSize int
}

// NewHandler constructs a new initiative [Handler].
func NewHandler(service *Service, sessions Sessions, defaultSize int) *Handler {
	return &Handler{service: service, sessions: sessions, defaultSize: defaultSize}
}

// Routes returns the owner endpoints. Authentication is required by the mounting router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/mine", handler.listMine)
	router.Delete("/{id}", handler.deleteInitiative)
	router.Get("/{id}/deletion", handler.deletionStatus)

	return router
}

// AdminRoutes returns the admin table endpoints. The admin role is enforced by the mounting router.
func (handler *Handler) AdminRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.selectPage)
	return router
}

// DeleteResponse is the payload of a settled deletion.
type DeleteResponse struct {
	Status     mutation.Status `json:"status"`
	NavigateTo string          `json:"navigate_to,omitempty"`
}

/*
GET /api/v1/initiatives/mine.

Description: Lists the initiatives owned by the caller, drafts included.

Response:
  - 200: []Initiative
  - 204: the request was aborted
  - 502: UPSTREAM_ERROR
*/
func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	initiatives, err := handler.service.ListMine(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, initiatives)
}

/*
DELETE /api/v1/initiatives/{id}.

Description: Deletes an initiative. Cached listings drop it immediately and
are restored if the platform refuses the deletion.

Response:
  - 200: DeleteResponse (navigate_to is set on success)
  - 400: VALIDATION_ERROR: Invalid id
  - 409: CONFLICT: Deletion already pending
  - 502: UPSTREAM_ERROR: Deletion failed and was rolled back
*/
func (handler *Handler) deleteInitiative(writer http.ResponseWriter, request *http.Request) {
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

	redirect := &notify.Redirect{}
	status, err := handler.service.DeleteInitiative(request.Context(), userID, id, handler.sessions.Sink(userID), redirect)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, DeleteResponse{Status: status, NavigateTo: redirect.Route()})
}

/*
GET /api/v1/initiatives/{id}/deletion.

Description: Reports whether a deletion started by the caller is pending or
has failed.

Response:
  - 200: mutation.Status
*/
func (handler *Handler) deletionStatus(writer http.ResponseWriter, request *http.Request) {
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

	respond.OK(writer, handler.service.DeleteStatus(userID, id))
}

/*
GET /api/v1/admin/initiatives.

Description: Renders one page of the admin table. The unfiltered view is paged
by the platform; a state filter aggregates every page locally.

Request:
  - state: string ("all" or an initiative state)
  - page: int (zero-based, ignored when the filter changes)
  - size: int

Response:
  - 200: []Initiative with pagination meta and mode
  - 400: VALIDATION_ERROR: Unknown state
  - 502: UPSTREAM_ERROR: Any page failed
*/
func (handler *Handler) selectPage(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	value := request.URL.Query().Get("state")
	filter, err := ParseStateFilter(value)
	if err != nil {
		validator := &validate.Validator{}
		respond.Error(writer, request, validator.OneOf("state", value, stateFilterValues...).Err())
		return
	}

	state := handler.sessions.Cursor(userID).Apply(filter, pagination.FromRequest(request, handler.defaultSize))

	selection, err := handler.service.Select(request.Context(), state)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, SelectionEnvelope{
		Data: selection.Rows,
		Mode: selection.Mode,
		Meta: pagination.NewMeta(selection.Page, selection.Size, selection.TotalCount),
	})
}

// stateFilterValues lists the accepted values of the state parameter.
var stateFilterValues = []string{
	string(FilterAll),
	string(StateDraft),
	string(StateProposal),
	string(StateInProcess),
	string(StateApproved),
	string(StateDisable),
}

// SelectionEnvelope is the admin table payload: the paginated envelope plus the paging mode.
type SelectionEnvelope struct {
	Data []Initiative    `json:"data"`
	Mode Mode            `json:"mode"`
	Meta pagination.Meta `json:"meta"`
}
