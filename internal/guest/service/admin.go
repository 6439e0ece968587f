package service

import (
	"context"
	"errors"
	"strings"

	"guestlist/internal/guest/models"
	id "guestlist/pkg/domain"
	dErrors "guestlist/pkg/domain-errors"
	"guestlist/pkg/platform/sentinel"
	"guestlist/pkg/requestcontext"
)

// CreateGuest adds an unconfirmed guest to the list.
func (s *Service) CreateGuest(ctx context.Context, lastName, firstName string) (*models.Guest, error) {
	guest, err := models.NewGuest(id.NewGuestID(), lastName, firstName, requestcontext.Now(ctx))
	if err != nil {
		// Convert invariant violations to validation errors for API response
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.guests.Create(ctx, guest); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "a guest with this name is already on the list")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create guest")
	}

	s.logAudit(ctx, "guest created",
		"guest_id", guest.ID.String(),
		"guest", guest.FullName(),
	)
	if s.metrics != nil {
		s.metrics.IncrementGuestsCreated()
	}
	return guest, nil
}

// UpdateGuest applies trimmed name updates and the confirmation-state
// transition. Names change unconditionally; the confirmation timestamp is
// only touched when the state actually flips (see models.ApplyStatus). Runs
// through Execute so the edit is atomic against concurrent confirmations.
func (s *Service) UpdateGuest(ctx context.Context, guestID id.GuestID, lastName, firstName string, confirmed bool) (*models.Guest, error) {
	if guestID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "guest ID required")
	}

	lastName = strings.TrimSpace(lastName)
	firstName = strings.TrimSpace(firstName)
	if err := models.ValidateNames(lastName, firstName); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}

	now := requestcontext.Now(ctx)
	guest, err := s.guests.Execute(ctx, guestID,
		func(*models.Guest) error { return nil },
		func(g *models.Guest) {
			g.ApplyNames(lastName, firstName, now)
			g.ApplyStatus(confirmed, now)
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "guest not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "a guest with this name is already on the list")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update guest")
		}
	}

	s.logAudit(ctx, "guest updated",
		"guest_id", guest.ID.String(),
		"guest", guest.FullName(),
		"confirmed", guest.Confirmed,
	)
	return guest, nil
}

// DeleteGuest removes a guest permanently. No soft-delete.
func (s *Service) DeleteGuest(ctx context.Context, guestID id.GuestID) error {
	if guestID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "guest ID required")
	}

	if err := s.guests.Delete(ctx, guestID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "guest not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete guest")
	}

	s.logAudit(ctx, "guest deleted", "guest_id", guestID.String())
	if s.metrics != nil {
		s.metrics.IncrementGuestsDeleted()
	}
	return nil
}

// GetGuest returns a guest by ID for edit flows and detail views.
func (s *Service) GetGuest(ctx context.Context, guestID id.GuestID) (*models.Guest, error) {
	if guestID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "guest ID required")
	}

	guest, err := s.guests.FindByID(ctx, guestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "guest not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load guest")
	}
	return guest, nil
}
