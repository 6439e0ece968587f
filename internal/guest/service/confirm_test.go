package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"guestlist/internal/guest/models"
	"guestlist/internal/guest/service"
	"guestlist/internal/guest/store"
	id "guestlist/pkg/domain"
	"guestlist/pkg/requestcontext"
)

// trackingStore wraps the in-memory store so tests can observe lookups and
// inject storage faults.
type trackingStore struct {
	*store.InMemory
	lookups       int
	findByNameErr error
	executeErr    error
}

func (s *trackingStore) FindByName(ctx context.Context, lastName, firstName string) (*models.Guest, error) {
	s.lookups++
	if s.findByNameErr != nil {
		return nil, s.findByNameErr
	}
	return s.InMemory.FindByName(ctx, lastName, firstName)
}

func (s *trackingStore) Execute(ctx context.Context, guestID id.GuestID, validate func(*models.Guest) error, mutate func(*models.Guest)) (*models.Guest, error) {
	if s.executeErr != nil {
		return nil, s.executeErr
	}
	return s.InMemory.Execute(ctx, guestID, validate, mutate)
}

type ConfirmSuite struct {
	suite.Suite
	store   *trackingStore
	service *service.Service
	ctx     context.Context
	now     time.Time
}

func (s *ConfirmSuite) SetupTest() {
	s.store = &trackingStore{InMemory: store.NewInMemory()}
	s.service = service.New(s.store)
	s.now = time.Date(2025, 6, 14, 18, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestConfirmSuite(t *testing.T) {
	suite.Run(t, new(ConfirmSuite))
}

func (s *ConfirmSuite) addGuest(lastName, firstName string) *models.Guest {
	guest, err := models.NewGuest(id.NewGuestID(), lastName, firstName, s.now.Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(s.ctx, guest))
	return guest
}

func (s *ConfirmSuite) TestConfirmSuccess() {
	s.addGuest("Dupont", "Jean")

	outcome := s.service.Confirm(s.ctx, "Dupont", "Jean")

	s.True(outcome.Success)
	s.Contains(outcome.Message, "Jean Dupont")
	s.Require().NotNil(outcome.Guest)
	s.True(outcome.Guest.Confirmed)
	s.Require().NotNil(outcome.Guest.ConfirmedAt)
	s.True(outcome.Guest.ConfirmedAt.Equal(s.now))
}

// TestConfirmIsIdempotent verifies that confirming twice leaves the first
// timestamp in place and reports it back.
func (s *ConfirmSuite) TestConfirmIsIdempotent() {
	s.addGuest("Dupont", "Jean")

	first := s.service.Confirm(s.ctx, "Dupont", "Jean")
	s.Require().True(first.Success)

	laterCtx := requestcontext.WithTime(context.Background(), s.now.Add(2*time.Hour))
	second := s.service.Confirm(laterCtx, "Dupont", "Jean")

	s.False(second.Success)
	s.Contains(second.Message, "already confirmed")
	s.Contains(second.Message, "14/06/2025 at 18:30")
	s.Require().NotNil(second.Guest)
	s.True(second.Guest.ConfirmedAt.Equal(s.now))
}

// TestConfirmMatchingIgnoresCaseAndWhitespace runs the same guest through
// every input variant; all resolve to the same record.
func (s *ConfirmSuite) TestConfirmMatchingIgnoresCaseAndWhitespace() {
	guest := s.addGuest("Dupont", "Jean")

	outcome := s.service.Confirm(s.ctx, "  dupont  ", " JEAN ")

	s.True(outcome.Success)
	s.Require().NotNil(outcome.Guest)
	s.Equal(guest.ID, outcome.Guest.ID)
}

func (s *ConfirmSuite) TestConfirmUnknownGuest() {
	outcome := s.service.Confirm(s.ctx, "Durand", "Pierre")

	s.False(outcome.Success)
	s.Contains(outcome.Message, "'Durand Pierre'")
	s.Contains(outcome.Message, "check the exact spelling")
	s.Nil(outcome.Guest)
}

// TestConfirmBlankInput verifies whitespace-only names short-circuit before
// any store access.
func (s *ConfirmSuite) TestConfirmBlankInput() {
	for _, pair := range [][2]string{
		{"", "Jean"},
		{"Dupont", ""},
		{"   ", "Jean"},
		{"Dupont", "\t"},
		{"", ""},
	} {
		outcome := s.service.Confirm(s.ctx, pair[0], pair[1])

		s.False(outcome.Success)
		s.Equal("Please fill in all required fields.", outcome.Message)
		s.Nil(outcome.Guest)
	}
	s.Zero(s.store.lookups)
}

// TestConfirmStorageFault verifies infrastructure failures surface as a
// generic outcome, never a raw error.
func (s *ConfirmSuite) TestConfirmStorageFault() {
	s.addGuest("Dupont", "Jean")

	s.Run("lookup failure", func() {
		s.store.findByNameErr = errors.New("connection refused")
		defer func() { s.store.findByNameErr = nil }()

		outcome := s.service.Confirm(s.ctx, "Dupont", "Jean")

		s.False(outcome.Success)
		s.Contains(outcome.Message, "technical error")
		s.NotContains(outcome.Message, "connection refused")
		s.Nil(outcome.Guest)
	})

	s.Run("transition failure", func() {
		s.store.executeErr = errors.New("write timeout")
		defer func() { s.store.executeErr = nil }()

		outcome := s.service.Confirm(s.ctx, "Dupont", "Jean")

		s.False(outcome.Success)
		s.Contains(outcome.Message, "technical error")
		s.NotContains(outcome.Message, "write timeout")
	})
}

// TestConcurrentConfirmSingleWinner races many confirmation requests for the
// same guest; exactly one reports success, the rest see already-confirmed.
func TestConcurrentConfirmSingleWinner(t *testing.T) {
	guests := store.NewInMemory()
	svc := service.New(guests)

	guest, err := models.NewGuest(id.NewGuestID(), "Dupont", "Jean", time.Now())
	require.NoError(t, err)
	require.NoError(t, guests.Create(context.Background(), guest))

	const attempts = 32
	var wg sync.WaitGroup
	outcomes := make(chan *models.ConfirmationOutcome, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes <- svc.Confirm(context.Background(), "Dupont", "Jean")
		}()
	}
	wg.Wait()
	close(outcomes)

	successes := 0
	for outcome := range outcomes {
		if outcome.Success {
			successes++
		} else {
			require.Contains(t, outcome.Message, "already confirmed")
		}
	}
	require.Equal(t, 1, successes)
}
