package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"guestlist/internal/guest/models"
	id "guestlist/pkg/domain"
	"guestlist/pkg/platform/sentinel"
)

// Redis key layout:
//
//	guest:{id}       hash with the guest fields
//	guests:order     list of ids, insertion order
//	guests:names     hash normalized name key -> id (uniqueness + name lookup)
//	guests:confirmed set of confirmed ids
//
// Writes that span keys go through WATCH/MULTI; Execute retries on
// transaction conflicts so concurrent transitions for the same guest
// serialize with exactly one winner.
const (
	redisKeyOrder     = "guests:order"
	redisKeyNames     = "guests:names"
	redisKeyConfirmed = "guests:confirmed"

	redisTxRetries = 8
)

func redisGuestKey(guestID id.GuestID) string {
	return "guest:" + guestID.String()
}

// Redis persists guests in a Redis instance.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Create(ctx context.Context, guest *models.Guest) error {
	key := models.NormalizedKey(guest.LastName, guest.FirstName)

	// HSetNX is the atomic name claim; losing it is a conflict.
	claimed, err := s.client.HSetNX(ctx, redisKeyNames, key, guest.ID.String()).Result()
	if err != nil {
		return fmt.Errorf("claim guest name: %w", err)
	}
	if !claimed {
		return sentinel.ErrConflict
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		writeGuestHash(ctx, pipe, guest)
		pipe.RPush(ctx, redisKeyOrder, guest.ID.String())
		if guest.Confirmed {
			pipe.SAdd(ctx, redisKeyConfirmed, guest.ID.String())
		}
		return nil
	})
	if err != nil {
		// Release the claim so a retried create is not stuck behind it.
		s.client.HDel(context.WithoutCancel(ctx), redisKeyNames, key)
		return fmt.Errorf("store guest: %w", err)
	}
	return nil
}

func (s *Redis) Update(ctx context.Context, guest *models.Guest) error {
	_, err := s.transact(ctx, guest.ID,
		func(*models.Guest) error { return nil },
		func(g *models.Guest) { *g = *guest.Clone() },
	)
	return err
}

func (s *Redis) Delete(ctx context.Context, guestID id.GuestID) error {
	guestKey := redisGuestKey(guestID)

	txn := func(tx *redis.Tx) error {
		guest, err := readGuestHash(ctx, tx, guestID)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, guestKey)
			pipe.HDel(ctx, redisKeyNames, models.NormalizedKey(guest.LastName, guest.FirstName))
			pipe.LRem(ctx, redisKeyOrder, 0, guestID.String())
			pipe.SRem(ctx, redisKeyConfirmed, guestID.String())
			return nil
		})
		return err
	}

	return s.watchRetry(ctx, txn, guestKey)
}

func (s *Redis) FindByID(ctx context.Context, guestID id.GuestID) (*models.Guest, error) {
	return readGuestHash(ctx, s.client, guestID)
}

func (s *Redis) FindByName(ctx context.Context, lastName, firstName string) (*models.Guest, error) {
	raw, err := s.client.HGet(ctx, redisKeyNames, models.NormalizedKey(lastName, firstName)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("lookup guest name: %w", err)
	}
	guestID, err := id.ParseGuestID(raw)
	if err != nil {
		return nil, fmt.Errorf("parse indexed guest id: %w", err)
	}
	return s.FindByID(ctx, guestID)
}

func (s *Redis) List(ctx context.Context) ([]*models.Guest, error) {
	return s.list(ctx, func(*models.Guest) bool { return true })
}

func (s *Redis) Search(ctx context.Context, query string) ([]*models.Guest, error) {
	needle := models.NormalizeName(query)
	return s.list(ctx, func(g *models.Guest) bool {
		return containsFold(g.LastName, needle) || containsFold(g.FirstName, needle)
	})
}

func (s *Redis) list(ctx context.Context, match func(*models.Guest) bool) ([]*models.Guest, error) {
	ids, err := s.client.LRange(ctx, redisKeyOrder, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list guest ids: %w", err)
	}

	guests := make([]*models.Guest, 0, len(ids))
	for _, raw := range ids {
		guestID, err := id.ParseGuestID(raw)
		if err != nil {
			return nil, fmt.Errorf("parse listed guest id: %w", err)
		}
		guest, err := readGuestHash(ctx, s.client, guestID)
		if err != nil {
			// A guest deleted mid-listing is not an error.
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if match(guest) {
			guests = append(guests, guest)
		}
	}
	return guests, nil
}

func (s *Redis) CountAll(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, redisKeyOrder).Result()
	if err != nil {
		return 0, fmt.Errorf("count guests: %w", err)
	}
	return int(n), nil
}

func (s *Redis) CountConfirmed(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, redisKeyConfirmed).Result()
	if err != nil {
		return 0, fmt.Errorf("count confirmed guests: %w", err)
	}
	return int(n), nil
}

// Execute runs validate then mutate under an optimistic WATCH on the guest
// key, retrying on transaction conflicts. The committed snapshot is returned.
func (s *Redis) Execute(ctx context.Context, guestID id.GuestID, validate func(*models.Guest) error, mutate func(*models.Guest)) (*models.Guest, error) {
	return s.transact(ctx, guestID, validate, mutate)
}

func (s *Redis) transact(ctx context.Context, guestID id.GuestID, validate func(*models.Guest) error, mutate func(*models.Guest)) (*models.Guest, error) {
	var committed *models.Guest

	txn := func(tx *redis.Tx) error {
		current, err := readGuestHash(ctx, tx, guestID)
		if err != nil {
			return err
		}

		work := current.Clone()
		if err := validate(work); err != nil {
			return err
		}
		mutate(work)
		work.ID = guestID

		oldKey := models.NormalizedKey(current.LastName, current.FirstName)
		newKey := models.NormalizedKey(work.LastName, work.FirstName)
		if newKey != oldKey {
			holder, err := tx.HGet(ctx, redisKeyNames, newKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("check guest name: %w", err)
			}
			if err == nil && holder != guestID.String() {
				return sentinel.ErrConflict
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			writeGuestHash(ctx, pipe, work)
			if newKey != oldKey {
				pipe.HDel(ctx, redisKeyNames, oldKey)
				pipe.HSet(ctx, redisKeyNames, newKey, guestID.String())
			}
			if work.Confirmed {
				pipe.SAdd(ctx, redisKeyConfirmed, guestID.String())
			} else {
				pipe.SRem(ctx, redisKeyConfirmed, guestID.String())
			}
			return nil
		})
		if err != nil {
			return err
		}
		committed = work
		return nil
	}

	if err := s.watchRetry(ctx, txn, redisGuestKey(guestID), redisKeyNames); err != nil {
		return nil, err
	}
	return committed, nil
}

func (s *Redis) watchRetry(ctx context.Context, txn func(*redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < redisTxRetries; attempt++ {
		err := s.client.Watch(ctx, txn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("guest transaction: %w", sentinel.ErrUnavailable)
}

type redisHashReader interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func readGuestHash(ctx context.Context, r redisHashReader, guestID id.GuestID) (*models.Guest, error) {
	fields, err := r.HGetAll(ctx, redisGuestKey(guestID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read guest: %w", err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}

	guest := &models.Guest{
		ID:        guestID,
		LastName:  fields["last_name"],
		FirstName: fields["first_name"],
		Confirmed: fields["confirmed"] == "1",
	}
	if guest.CreatedAt, err = parseHashTime(fields["created_at"]); err != nil {
		return nil, err
	}
	if guest.UpdatedAt, err = parseHashTime(fields["updated_at"]); err != nil {
		return nil, err
	}
	if raw := fields["confirmed_at"]; raw != "" {
		at, err := parseHashTime(raw)
		if err != nil {
			return nil, err
		}
		guest.ConfirmedAt = &at
	}
	return guest, nil
}

func writeGuestHash(ctx context.Context, pipe redis.Pipeliner, guest *models.Guest) {
	confirmed := "0"
	if guest.Confirmed {
		confirmed = "1"
	}
	confirmedAt := ""
	if guest.ConfirmedAt != nil {
		confirmedAt = guest.ConfirmedAt.Format(time.RFC3339Nano)
	}
	pipe.HSet(ctx, redisGuestKey(guest.ID),
		"last_name", guest.LastName,
		"first_name", guest.FirstName,
		"confirmed", confirmed,
		"confirmed_at", confirmedAt,
		"created_at", guest.CreatedAt.Format(time.RFC3339Nano),
		"updated_at", guest.UpdatedAt.Format(time.RFC3339Nano),
	)
}

func parseHashTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse guest timestamp: %w", err)
	}
	return t, nil
}
