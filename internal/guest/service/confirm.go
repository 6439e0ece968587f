package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	guestmetrics "guestlist/internal/guest/metrics"
	"guestlist/internal/guest/models"
	"guestlist/pkg/platform/sentinel"
	"guestlist/pkg/requestcontext"
)

// confirmedAtLayout renders the prior confirmation time in already-confirmed
// messages.
const confirmedAtLayout = "02/01/2006 at 15:04"

// Guest-facing messages. Every expected condition maps to one of these; raw
// technical errors never reach the guest.
const (
	msgMissingFields = "Please fill in all required fields."
	msgTechnical     = "A technical error occurred while recording your confirmation. Please try again in a few moments."
)

// Confirm resolves a guest by name and applies the one-way confirmation
// transition. All expected conditions — blank input, no match, already
// confirmed, storage trouble — come back as outcomes, never errors. The
// transition itself runs through the store's Execute so concurrent attempts
// for the same guest produce exactly one success.
func (s *Service) Confirm(ctx context.Context, lastName, firstName string) *models.ConfirmationOutcome {
	lastName = strings.TrimSpace(lastName)
	firstName = strings.TrimSpace(firstName)
	if lastName == "" || firstName == "" {
		s.recordConfirmation(guestmetrics.OutcomeInvalid)
		return &models.ConfirmationOutcome{Message: msgMissingFields}
	}

	guest, err := s.guests.FindByName(ctx, lastName, firstName)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.confirmNotFound(lastName, firstName)
		}
		return s.confirmFailure(ctx, lastName, firstName, err)
	}

	now := requestcontext.Now(ctx)
	var already *models.Guest
	updated, err := s.guests.Execute(ctx, guest.ID,
		func(g *models.Guest) error {
			if g.CanConfirm() != nil {
				already = g.Clone()
				return sentinel.ErrAlreadyConfirmed
			}
			return nil
		},
		func(g *models.Guest) {
			g.ApplyConfirmation(now)
		},
	)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyConfirmed):
			s.recordConfirmation(guestmetrics.OutcomeAlreadyConfirmed)
			return &models.ConfirmationOutcome{
				Message: alreadyConfirmedMessage(already),
				Guest:   already,
			}
		case errors.Is(err, sentinel.ErrNotFound):
			// Deleted between lookup and transition.
			return s.confirmNotFound(lastName, firstName)
		default:
			return s.confirmFailure(ctx, lastName, firstName, err)
		}
	}

	s.logAudit(ctx, "guest confirmed",
		"guest_id", updated.ID.String(),
		"guest", updated.FullName(),
	)
	s.recordConfirmation(guestmetrics.OutcomeConfirmed)
	return &models.ConfirmationOutcome{
		Success: true,
		Message: fmt.Sprintf("Confirmation successful! Thank you %s, your attendance is recorded.", updated.FullName()),
		Guest:   updated,
	}
}

func (s *Service) confirmNotFound(lastName, firstName string) *models.ConfirmationOutcome {
	s.recordConfirmation(guestmetrics.OutcomeNotFound)
	return &models.ConfirmationOutcome{
		Message: fmt.Sprintf(
			"No guest found with the name '%s %s'. Please check the exact spelling of your last and first name.",
			lastName, firstName,
		),
	}
}

// confirmFailure downgrades a storage fault to a generic guest-facing outcome
// and logs the cause for operators.
func (s *Service) confirmFailure(ctx context.Context, lastName, firstName string, err error) *models.ConfirmationOutcome {
	if s.logger != nil {
		s.logger.ErrorContext(ctx, "confirmation failed",
			"last_name", lastName,
			"first_name", firstName,
			"error", err,
		)
	}
	s.recordConfirmation(guestmetrics.OutcomeError)
	return &models.ConfirmationOutcome{Message: msgTechnical}
}

func alreadyConfirmedMessage(guest *models.Guest) string {
	confirmedAt := "an unknown date"
	if guest != nil && guest.ConfirmedAt != nil {
		confirmedAt = guest.ConfirmedAt.Format(confirmedAtLayout)
	}
	return fmt.Sprintf(
		"Your attendance was already confirmed on %s. You do not need to confirm again.",
		confirmedAt,
	)
}
