package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"guestlist/internal/guest/models"
	id "guestlist/pkg/domain"
	"guestlist/pkg/platform/sentinel"
)

// SeedEntry is one invited name pair in a seed file.
type SeedEntry struct {
	LastName  string `json:"last_name"`
	FirstName string `json:"first_name"`
}

// Seeder is the subset of the store contract bulk seeding needs.
type Seeder interface {
	Create(ctx context.Context, guest *models.Guest) error
}

// LoadSeedFile reads a JSON array of seed entries from disk.
func LoadSeedFile(path string) ([]SeedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var entries []SeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return entries, nil
}

// Seed creates unconfirmed guests for every entry, skipping names already on
// the list so re-seeding at startup is idempotent. Returns the number of
// guests created.
func Seed(ctx context.Context, s Seeder, entries []SeedEntry, now time.Time) (int, error) {
	created := 0
	for _, entry := range entries {
		guest, err := models.NewGuest(id.NewGuestID(), entry.LastName, entry.FirstName, now)
		if err != nil {
			return created, fmt.Errorf("seed entry %q %q: %w", entry.LastName, entry.FirstName, err)
		}
		if err := s.Create(ctx, guest); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				continue
			}
			return created, fmt.Errorf("seed guest %s: %w", guest.FullName(), err)
		}
		created++
	}
	return created, nil
}
