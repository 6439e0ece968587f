// Package store provides the guest store backends. All of them enforce the
// same contract: normalized (last, first) names are unique, lookups by name
// are case- and surrounding-whitespace-insensitive, listing follows insertion
// order, and Execute serializes validate-then-mutate per guest.
package store

import (
	"context"
	"strings"
	"sync"

	"guestlist/internal/guest/models"
	id "guestlist/pkg/domain"
	"guestlist/pkg/platform/sentinel"
)

// InMemory is the default backend and the unit-test double. A single mutex is
// the mutual-exclusion boundary for every operation, which trivially gives
// Execute its per-guest serialization.
type InMemory struct {
	mu     sync.RWMutex
	guests map[id.GuestID]*models.Guest
	byName map[string]id.GuestID
	order  []id.GuestID
}

func NewInMemory() *InMemory {
	return &InMemory{
		guests: make(map[id.GuestID]*models.Guest),
		byName: make(map[string]id.GuestID),
	}
}

// Create stores a new guest. Returns sentinel.ErrConflict if another guest
// already holds the same normalized name.
func (s *InMemory) Create(_ context.Context, guest *models.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.NormalizedKey(guest.LastName, guest.FirstName)
	if _, taken := s.byName[key]; taken {
		return sentinel.ErrConflict
	}
	if _, exists := s.guests[guest.ID]; exists {
		return sentinel.ErrConflict
	}

	s.guests[guest.ID] = guest.Clone()
	s.byName[key] = guest.ID
	s.order = append(s.order, guest.ID)
	return nil
}

// Update replaces the stored record. Returns sentinel.ErrNotFound for an
// unknown ID and sentinel.ErrConflict when a rename collides with another
// guest's normalized name.
func (s *InMemory) Update(_ context.Context, guest *models.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(guest)
}

func (s *InMemory) commitLocked(guest *models.Guest) error {
	current, ok := s.guests[guest.ID]
	if !ok {
		return sentinel.ErrNotFound
	}

	oldKey := models.NormalizedKey(current.LastName, current.FirstName)
	newKey := models.NormalizedKey(guest.LastName, guest.FirstName)
	if newKey != oldKey {
		if holder, taken := s.byName[newKey]; taken && holder != guest.ID {
			return sentinel.ErrConflict
		}
		delete(s.byName, oldKey)
		s.byName[newKey] = guest.ID
	}

	s.guests[guest.ID] = guest.Clone()
	return nil
}

// Delete removes a guest permanently.
func (s *InMemory) Delete(_ context.Context, guestID id.GuestID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guest, ok := s.guests[guestID]
	if !ok {
		return sentinel.ErrNotFound
	}

	delete(s.guests, guestID)
	delete(s.byName, models.NormalizedKey(guest.LastName, guest.FirstName))
	for i, oid := range s.order {
		if oid == guestID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, guestID id.GuestID) (*models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guest, ok := s.guests[guestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return guest.Clone(), nil
}

// FindByName resolves a guest by normalized name match.
func (s *InMemory) FindByName(_ context.Context, lastName, firstName string) (*models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guestID, ok := s.byName[models.NormalizedKey(lastName, firstName)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.guests[guestID].Clone(), nil
}

// List returns all guests in insertion order.
func (s *InMemory) List(_ context.Context) ([]*models.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(func(*models.Guest) bool { return true }), nil
}

// Search returns guests whose last or first name contains the query as a
// case-insensitive substring, preserving insertion order.
func (s *InMemory) Search(_ context.Context, query string) ([]*models.Guest, error) {
	needle := models.NormalizeName(query)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(func(g *models.Guest) bool {
		return containsFold(g.LastName, needle) || containsFold(g.FirstName, needle)
	}), nil
}

func (s *InMemory) listLocked(match func(*models.Guest) bool) []*models.Guest {
	out := make([]*models.Guest, 0, len(s.order))
	for _, guestID := range s.order {
		if g := s.guests[guestID]; match(g) {
			out = append(out, g.Clone())
		}
	}
	return out
}

func (s *InMemory) CountAll(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.guests), nil
}

func (s *InMemory) CountConfirmed(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, g := range s.guests {
		if g.Confirmed {
			count++
		}
	}
	return count, nil
}

// Execute runs validate then mutate on the guest while holding the store
// lock, so concurrent transitions for the same guest serialize. The mutation
// is applied to a working copy and committed only when both callbacks pass;
// the committed snapshot is returned.
func (s *InMemory) Execute(_ context.Context, guestID id.GuestID, validate func(*models.Guest) error, mutate func(*models.Guest)) (*models.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.guests[guestID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}

	work := current.Clone()
	if err := validate(work); err != nil {
		return nil, err
	}
	mutate(work)

	if err := s.commitLocked(work); err != nil {
		return nil, err
	}
	return work.Clone(), nil
}

// containsFold reports whether haystack contains the already-lowercased
// needle, ignoring case.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
