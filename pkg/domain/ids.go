// Package domain holds typed identifiers shared across the module.
//
// IDs are distinct types over uuid.UUID so the compiler catches accidental
// cross-assignment, and parsing enforces the "valid, non-empty, non-nil"
// invariant at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "guestlist/pkg/domain-errors"
)

// GuestID identifies a guest record.
type GuestID uuid.UUID

// NewGuestID returns a fresh random guest ID.
func NewGuestID() GuestID {
	return GuestID(uuid.New())
}

// ParseGuestID parses a string into a GuestID, rejecting empty, malformed,
// and nil UUIDs.
func ParseGuestID(s string) (GuestID, error) {
	if s == "" {
		return GuestID{}, dErrors.New(dErrors.CodeInvalidInput, "guest ID is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return GuestID{}, dErrors.New(dErrors.CodeInvalidInput, "guest ID must be a valid UUID")
	}
	if u == uuid.Nil {
		return GuestID{}, dErrors.New(dErrors.CodeInvalidInput, "guest ID must not be nil")
	}
	return GuestID(u), nil
}

func (id GuestID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero UUID.
func (id GuestID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

// MarshalText implements encoding.TextMarshaler so IDs render as canonical
// UUID strings in JSON.
func (id GuestID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *GuestID) UnmarshalText(b []byte) error {
	parsed, err := ParseGuestID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
