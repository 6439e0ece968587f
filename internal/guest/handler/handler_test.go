package handler_test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"guestlist/internal/guest/handler"
	"guestlist/internal/guest/models"
	"guestlist/internal/guest/service"
	"guestlist/internal/guest/store"
	httptransport "guestlist/internal/transport/http"
	"guestlist/pkg/testutil"
)

const testAdminToken = "test-admin-token"

type HandlerSuite struct {
	suite.Suite
	router http.Handler
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewInMemory(), service.WithLogger(logger))
	s.router = httptransport.NewRouter(handler.New(svc, logger), testAdminToken, logger)
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) adminRequest(method, path string, body any) *http.Request {
	return testutil.WithAdminToken(testutil.NewJSONRequest(s.T(), method, path, body), testAdminToken)
}

func (s *HandlerSuite) createGuest(lastName, firstName string) *models.Guest {
	rr := testutil.DoRequest(s.router, s.adminRequest(http.MethodPost, "/admin/guests", map[string]string{
		"last_name":  lastName,
		"first_name": firstName,
	}))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	return testutil.UnmarshalResponse[models.Guest](s.T(), rr)
}

func (s *HandlerSuite) TestAdminTokenRequired() {
	s.Run("missing token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/guests", nil)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("wrong token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/admin/guests", nil)
		req.Header.Set("X-Admin-Token", "nope")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("confirmation endpoint stays public", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/rsvp/confirm", map[string]string{
			"last_name":  "Dupont",
			"first_name": "Jean",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})
}

func (s *HandlerSuite) TestConfirmEndpoint() {
	guest := s.createGuest("Dupont", "Jean")

	s.Run("confirms a known guest", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/rsvp/confirm", map[string]string{
			"last_name":  " dupont ",
			"first_name": "JEAN",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		outcome := testutil.UnmarshalResponse[models.ConfirmationOutcome](s.T(), rr)
		s.True(outcome.Success)
		s.Require().NotNil(outcome.Guest)
		s.Equal(guest.ID, outcome.Guest.ID)
	})

	s.Run("unknown guest is still HTTP 200", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/rsvp/confirm", map[string]string{
			"last_name":  "Nobody",
			"first_name": "Here",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		outcome := testutil.UnmarshalResponse[models.ConfirmationOutcome](s.T(), rr)
		s.False(outcome.Success)
		s.Contains(outcome.Message, "No guest found")
	})

	s.Run("blank fields are an outcome, not a 4xx", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/rsvp/confirm", map[string]string{
			"last_name": "  ",
		})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		outcome := testutil.UnmarshalResponse[models.ConfirmationOutcome](s.T(), rr)
		s.False(outcome.Success)
		s.Contains(outcome.Message, "required fields")
	})

	s.Run("malformed JSON is rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/rsvp/confirm", nil)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestGuestCRUD() {
	guest := s.createGuest("Dupont", "Jean")
	guestPath := fmt.Sprintf("/admin/guests/%s", guest.ID)

	s.Run("rejects duplicate creation", func() {
		rr := testutil.DoRequest(s.router, s.adminRequest(http.MethodPost, "/admin/guests", map[string]string{
			"last_name":  "DUPONT",
			"first_name": "jean",
		}))
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
	})

	s.Run("rejects blank names", func() {
		rr := testutil.DoRequest(s.router, s.adminRequest(http.MethodPost, "/admin/guests", map[string]string{
			"last_name":  "  ",
			"first_name": "Jean",
		}))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("fetches guest by ID", func() {
		rr := testutil.DoRequest(s.router, s.adminRequest(http.MethodGet, guestPath, nil))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		fetched := testutil.UnmarshalResponse[models.Guest](s.T(), rr)
		s.Equal(guest.ID, fetched.ID)
		s.False(fetched.Confirmed)
	})

	s.Run("rejects malformed guest ID", func() {
		rr := testutil.DoRequest(s.router, s.adminRequest(http.MethodGet, "/admin/guests/not-a-uuid", nil))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("updates names and confirmation state", func() {
		rr := testutil.DoRequest(s.router, s.adminRequest(http.MethodPut, guestPath, map[string]any{
			"last_name":  "Durand",
			"first_name": "Jean",
			"confirmed":  true,
		}))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		updated := testutil.UnmarshalResponse[models.Guest](s.T(), rr)
		s.Equal("Durand", updated.LastName)
		s.True(updated.Confirmed)
		s.NotNil(updated.ConfirmedAt)
	})

	s.Run("deletes the guest", func() {
		rr := testutil.DoRequest(s.router, s.adminRequest(http.MethodDelete, guestPath, nil))
		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)

		rr = testutil.DoRequest(s.router, s.adminRequest(http.MethodGet, guestPath, nil))
		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	})
}

func (s *HandlerSuite) TestListSearchAndStats() {
	s.createGuest("Martin", "Marie")
	s.createGuest("Durand", "Pierre")
	s.createGuest("Lemarchand", "Paul")

	confirmReq := testutil.NewJSONRequest(s.T(), http.MethodPost, "/rsvp/confirm", map[string]string{
		"last_name":  "Martin",
		"first_name": "Marie",
	})
	testutil.AssertStatus(s.T(), testutil.DoRequest(s.router, confirmReq), http.StatusOK)

	s.Run("lists all guests", func() {
		rr := testutil.DoRequest(s.router, s.adminRequest(http.MethodGet, "/admin/guests", nil))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		list := testutil.UnmarshalResponse[handler.GuestListResponse](s.T(), rr)
		s.Equal(3, list.Count)
		s.Require().Len(list.Guests, 3)
		s.Equal("Martin", list.Guests[0].LastName)
	})

	s.Run("filters with the q parameter", func() {
		rr := testutil.DoRequest(s.router, s.adminRequest(http.MethodGet, "/admin/guests?q=mar", nil))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		list := testutil.UnmarshalResponse[handler.GuestListResponse](s.T(), rr)
		s.Equal(2, list.Count)
	})

	s.Run("reports stats", func() {
		rr := testutil.DoRequest(s.router, s.adminRequest(http.MethodGet, "/admin/stats", nil))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)

		stats := testutil.UnmarshalResponse[models.Stats](s.T(), rr)
		s.Equal(3, stats.Total)
		s.Equal(1, stats.Confirmed)
		s.Equal(2, stats.Unconfirmed)
		s.InDelta(100.0/3.0, stats.Rate, 0.001)
	})
}

func (s *HandlerSuite) TestHealthEndpoint() {
	req := testutil.NewJSONRequest(s.T(), http.MethodGet, "/healthz", nil)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}
