package handler

import "guestlist/internal/guest/models"

// GuestListResponse envelopes admin listings so the count travels with the
// page.
type GuestListResponse struct {
	Guests []*models.Guest `json:"guests"`
	Count  int             `json:"count"`
}
