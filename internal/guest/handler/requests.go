package handler

import (
	"strings"

	"guestlist/internal/guest/models"
	dErrors "guestlist/pkg/domain-errors"
)

// ConfirmRequest is the guest-facing confirmation payload.
type ConfirmRequest struct {
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
}

func (r *ConfirmRequest) Normalize() {
	r.LastName = strings.TrimSpace(r.LastName)
	r.FirstName = strings.TrimSpace(r.FirstName)
}

// Validate is intentionally lenient: blank fields are an engine outcome, not
// a transport rejection, so guests get the friendly message either way.
func (r *ConfirmRequest) Validate() error {
	return nil
}

// CreateGuestRequest adds a guest to the list.
type CreateGuestRequest struct {
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
}

func (r *CreateGuestRequest) Normalize() {
	r.LastName = strings.TrimSpace(r.LastName)
	r.FirstName = strings.TrimSpace(r.FirstName)
}

func (r *CreateGuestRequest) Validate() error {
	return validateNamePair(r.LastName, r.FirstName)
}

// UpdateGuestRequest replaces a guest's names and confirmation state.
type UpdateGuestRequest struct {
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
	Confirmed bool   `json:"confirmed"`
}

func (r *UpdateGuestRequest) Normalize() {
	r.LastName = strings.TrimSpace(r.LastName)
	r.FirstName = strings.TrimSpace(r.FirstName)
}

func (r *UpdateGuestRequest) Validate() error {
	return validateNamePair(r.LastName, r.FirstName)
}

func validateNamePair(lastName, firstName string) error {
	if lastName == "" || firstName == "" {
		return dErrors.New(dErrors.CodeValidation, "last_name and first_name are required")
	}
	if len(lastName) > models.MaxNameLength || len(firstName) > models.MaxNameLength {
		return dErrors.Newf(dErrors.CodeValidation, "names must be %d characters or less", models.MaxNameLength)
	}
	return nil
}
