package models

import (
	"strings"
	"time"

	id "guestlist/pkg/domain"
	dErrors "guestlist/pkg/domain-errors"
)

// MaxNameLength bounds stored last and first names.
const MaxNameLength = 100

// Guest is the sole aggregate: a person on the invitation list.
//
// Invariants:
//   - LastName and FirstName are non-empty, trimmed, at most 100 characters
//   - Confirmed is true if and only if ConfirmedAt is non-nil
//   - Guest-facing confirmation is a one-way latch; only administrative
//     updates may clear the flag
//   - Normalized (last, first) pairs are unique across the store
//
// Every code path that flips Confirmed goes through ApplyConfirmation or
// ApplyStatus so the timestamp invariant stays centralized.
type Guest struct {
	ID          id.GuestID `json:"id"`
	LastName    string     `json:"last_name"`
	FirstName   string     `json:"first_name"`
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewGuest constructs an unconfirmed guest with trimmed names.
func NewGuest(guestID id.GuestID, lastName, firstName string, now time.Time) (*Guest, error) {
	lastName = strings.TrimSpace(lastName)
	firstName = strings.TrimSpace(firstName)
	if err := ValidateNames(lastName, firstName); err != nil {
		return nil, err
	}
	return &Guest{
		ID:        guestID,
		LastName:  lastName,
		FirstName: firstName,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ValidateNames enforces the name invariants on an already-trimmed pair.
func ValidateNames(lastName, firstName string) error {
	if lastName == "" || firstName == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "last name and first name are required")
	}
	if len(lastName) > MaxNameLength || len(firstName) > MaxNameLength {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "names must be %d characters or less", MaxNameLength)
	}
	return nil
}

// NormalizeName produces the matching key for a raw name: surrounding
// whitespace trimmed, case folded. Internal whitespace and diacritics are
// left alone; stored casing is never touched.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizedKey is the store-level uniqueness and lookup key for a name pair.
func NormalizedKey(lastName, firstName string) string {
	return NormalizeName(lastName) + "\x00" + NormalizeName(firstName)
}

// FullName renders the guest's display name as used in messages.
func (g *Guest) FullName() string {
	return g.FirstName + " " + g.LastName
}

// CanConfirm checks the one-way confirmation latch.
// Use with ApplyConfirmation in Execute callbacks.
func (g *Guest) CanConfirm() error {
	if g.Confirmed {
		return dErrors.New(dErrors.CodeInvariantViolation, "guest is already confirmed")
	}
	return nil
}

// ApplyConfirmation sets the latch and stamps the confirmation time.
// Call CanConfirm first to validate the transition.
func (g *Guest) ApplyConfirmation(now time.Time) {
	g.Confirmed = true
	g.ConfirmedAt = &now
	g.UpdatedAt = now
}

// ApplyStatus applies an administrative confirmation-state change while
// maintaining the timestamp invariant: unconfirmed→confirmed stamps now,
// confirmed→unconfirmed clears the stamp, and an unchanged state leaves the
// existing stamp untouched — administrative edits that don't change the
// confirmation status never alter history.
func (g *Guest) ApplyStatus(confirmed bool, now time.Time) {
	switch {
	case confirmed && !g.Confirmed:
		g.ConfirmedAt = &now
	case !confirmed && g.Confirmed:
		g.ConfirmedAt = nil
	}
	g.Confirmed = confirmed
	g.UpdatedAt = now
}

// ApplyNames replaces the stored names with an already-validated, trimmed
// pair.
func (g *Guest) ApplyNames(lastName, firstName string, now time.Time) {
	g.LastName = lastName
	g.FirstName = firstName
	g.UpdatedAt = now
}

// Clone returns a detached copy so stores can hand out snapshots without
// exposing their internal records.
func (g *Guest) Clone() *Guest {
	cp := *g
	if g.ConfirmedAt != nil {
		at := *g.ConfirmedAt
		cp.ConfirmedAt = &at
	}
	return &cp
}
