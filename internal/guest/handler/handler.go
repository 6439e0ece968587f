// Package handler is the thin HTTP layer over the guest service. It decodes
// and validates payloads, delegates to the service, and renders JSON; business
// rules stay in the service.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"guestlist/internal/guest/models"
	id "guestlist/pkg/domain"
	"guestlist/pkg/platform/httputil"
	request "guestlist/pkg/platform/middleware/request"
)

// Service defines the guest operations the handlers delegate to.
type Service interface {
	Confirm(ctx context.Context, lastName, firstName string) *models.ConfirmationOutcome
	CreateGuest(ctx context.Context, lastName, firstName string) (*models.Guest, error)
	UpdateGuest(ctx context.Context, guestID id.GuestID, lastName, firstName string, confirmed bool) (*models.Guest, error)
	DeleteGuest(ctx context.Context, guestID id.GuestID) error
	GetGuest(ctx context.Context, guestID id.GuestID) (*models.Guest, error)
	Search(ctx context.Context, query string) ([]*models.Guest, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

// Handler wires guest endpoints to the guest service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a guest handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the guest-facing confirmation endpoint.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/rsvp/confirm", h.HandleConfirm)
}

// RegisterAdmin mounts the administrative endpoints. The caller is expected
// to guard the router with the admin-token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/guests", h.HandleListGuests)
	r.Post("/guests", h.HandleCreateGuest)
	r.Get("/guests/{guestID}", h.HandleGetGuest)
	r.Put("/guests/{guestID}", h.HandleUpdateGuest)
	r.Delete("/guests/{guestID}", h.HandleDeleteGuest)
	r.Get("/stats", h.HandleStats)
}

// HandleConfirm handles POST /rsvp/confirm. Expected conditions come back as
// a 200 outcome with success=false; the engine never exposes technical
// errors to guests.
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ConfirmRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	outcome := h.service.Confirm(ctx, req.LastName, req.FirstName)

	h.logger.InfoContext(ctx, "confirmation attempt",
		"request_id", requestID,
		"success", outcome.Success,
	)
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

// HandleListGuests handles GET /admin/guests?q=..., which doubles as the full
// listing when q is absent.
func (h *Handler) HandleListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logError(r.Context(), "guest search failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, GuestListResponse{Guests: guests, Count: len(guests)})
}

func (h *Handler) HandleCreateGuest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateGuestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	guest, err := h.service.CreateGuest(ctx, req.LastName, req.FirstName)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, guest)
}

func (h *Handler) HandleGetGuest(w http.ResponseWriter, r *http.Request) {
	guestID, ok := h.pathGuestID(w, r)
	if !ok {
		return
	}

	guest, err := h.service.GetGuest(r.Context(), guestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, guest)
}

func (h *Handler) HandleUpdateGuest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	guestID, ok := h.pathGuestID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateGuestRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	guest, err := h.service.UpdateGuest(ctx, guestID, req.LastName, req.FirstName, req.Confirmed)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, guest)
}

func (h *Handler) HandleDeleteGuest(w http.ResponseWriter, r *http.Request) {
	guestID, ok := h.pathGuestID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteGuest(r.Context(), guestID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logError(r.Context(), "stats computation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) pathGuestID(w http.ResponseWriter, r *http.Request) (id.GuestID, bool) {
	guestID, err := id.ParseGuestID(chi.URLParam(r, "guestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.GuestID{}, false
	}
	return guestID, true
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", request.GetRequestID(ctx),
		"error", err,
	)
}
