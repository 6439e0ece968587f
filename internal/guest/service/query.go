package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"guestlist/internal/guest/models"
	dErrors "guestlist/pkg/domain-errors"
)

// Search filters the guest list by a case-insensitive substring over last or
// first name. A blank query returns the whole list in store order.
func (s *Service) Search(ctx context.Context, query string) ([]*models.Guest, error) {
	query = strings.TrimSpace(query)

	var (
		guests []*models.Guest
		err    error
	)
	if query == "" {
		guests, err = s.guests.List(ctx)
	} else {
		guests, err = s.guests.Search(ctx, query)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search guests")
	}
	return guests, nil
}

// Stats recomputes the confirmation aggregate from current store contents.
// No caching; staleness is not worth the synchronization it would buy.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	var total, confirmed int

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.guests.CountAll(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		confirmed, err = s.guests.CountConfirmed(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute stats")
	}

	rate := 0.0
	if total > 0 {
		rate = float64(confirmed) / float64(total) * 100
	}
	return &models.Stats{
		Total:       total,
		Confirmed:   confirmed,
		Unconfirmed: total - confirmed,
		Rate:        rate,
	}, nil
}
