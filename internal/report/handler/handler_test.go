package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/report/handler"
	"idreclaim/internal/report/models"
	"idreclaim/internal/report/service"
	"idreclaim/internal/report/store"
	"idreclaim/pkg/sentinel"
	"idreclaim/pkg/testutil"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*middleware.JWTClaims, error) {
	userID, ok := strings.CutPrefix(token, "user:")
	if !ok {
		return nil, errors.New("bad token")
	}
	return &middleware.JWTClaims{UserID: userID}, nil
}

type stubMatcher struct{ count int }

func (m stubMatcher) MatchLost(context.Context, models.LostReport) (int, error) {
	return m.count, nil
}
func (m stubMatcher) MatchFound(context.Context, models.FoundReport) (int, error) {
	return m.count, nil
}
func (m stubMatcher) MatchVaultTarget(context.Context, models.FoundReport, string) (int, error) {
	return m.count, nil
}

type stubVaults struct{}

func (stubVaults) Resolve(context.Context, string) (string, error) {
	return "", sentinel.ErrNotFound
}

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	svc := service.New(store.NewInMemoryLostStore(), store.NewInMemoryFoundStore(), stubMatcher{}, stubVaults{}, logger)

	s.router = chi.NewRouter()
	handler.New(svc, stubValidator{}, logger).Register(s.router)
}

func (s *HandlerSuite) authed(req *http.Request, userID string) *http.Request {
	req.Header.Set("Authorization", "Bearer user:"+userID)
	return req
}

func (s *HandlerSuite) lostBody() map[string]any {
	return map[string]any{
		"document_type": "National ID",
		"full_name":     "Jane Doe",
		"last_location": "Douala",
	}
}

func (s *HandlerSuite) foundBody() map[string]any {
	return map[string]any{
		"document_type":   "National ID",
		"full_name":       "Jane Doe",
		"region":          "Littoral",
		"location_detail": "Akwa roundabout",
		"image_url":       "https://img.example/found.jpg",
	}
}

func (s *HandlerSuite) TestSubmitLost() {
	s.Run("requires bearer token", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/reports/lost", s.lostBody())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("creates report for authenticated owner", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/reports/lost", s.lostBody()), "owner-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)

		result := testutil.UnmarshalResponse[service.SubmitLostResult](s.T(), rr)
		s.Equal("owner-1", result.Report.OwnerID)
		s.False(result.Matched)
	})

	s.Run("rejects invalid body", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/reports/lost", "not an object"), "owner-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
		testutil.AssertErrorCode(s.T(), rr, "validation_failed")
	})

	s.Run("rejects missing fields", func() {
		body := s.lostBody()
		delete(body, "full_name")
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/reports/lost", body), "owner-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}

func (s *HandlerSuite) TestSubmitFoundAllowsAnonymous() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/reports/found", s.foundBody())
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	result := testutil.UnmarshalResponse[service.SubmitFoundResult](s.T(), rr)
	s.Equal(models.AnonymousUser, result.Report.FinderID)
}

func (s *HandlerSuite) TestSubmitFoundUnknownVaultSlug() {
	body := s.foundBody()
	body["vault_slug"] = "qr-unknown"
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/reports/found", body)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
}

func (s *HandlerSuite) TestGetAndFeeds() {
	req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/reports/lost", s.lostBody()), "owner-1")
	created := testutil.UnmarshalResponse[service.SubmitLostResult](s.T(), testutil.DoRequest(s.router, req))

	s.Run("get by id is public", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/reports/lost/"+created.Report.ID.String()))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
	})

	s.Run("malformed id rejected", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/reports/lost/not-a-uuid"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("recent feed is public", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/reports/recent"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		feed := testutil.UnmarshalResponse[service.Feed](s.T(), rr)
		s.Len(feed.Lost, 1)
	})

	s.Run("search requires query", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/reports/search"))
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("search finds by name", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/reports/search?q=jane"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		feed := testutil.UnmarshalResponse[service.Feed](s.T(), rr)
		s.Len(feed.Lost, 1)
	})

	s.Run("mine requires auth", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/me/reports"))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("mine lists the caller's reports", func() {
		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/me/reports"), "owner-1"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		feed := testutil.UnmarshalResponse[service.Feed](s.T(), rr)
		s.Len(feed.Lost, 1)
	})
}

func (s *HandlerSuite) TestRecoveredAndDelete() {
	req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/reports/lost", s.lostBody()), "owner-1")
	created := testutil.UnmarshalResponse[service.SubmitLostResult](s.T(), testutil.DoRequest(s.router, req))
	id := created.Report.ID.String()

	s.Run("non-owner cannot recover", func() {
		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodPost, "/reports/lost/"+id+"/recovered"), "owner-2"))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("owner recovers", func() {
		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodPost, "/reports/lost/"+id+"/recovered"), "owner-1"))
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		report := testutil.UnmarshalResponse[models.LostReport](s.T(), rr)
		s.Equal(models.StatusReturned, report.Status)
	})

	s.Run("second recovery conflicts", func() {
		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodPost, "/reports/lost/"+id+"/recovered"), "owner-1"))
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
	})

	s.Run("owner deletes", func() {
		rr := testutil.DoRequest(s.router, s.authed(testutil.NewRequest(s.T(), http.MethodDelete, "/reports/lost/"+id), "owner-1"))
		testutil.AssertStatus(s.T(), rr, http.StatusNoContent)

		rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/reports/lost/"+id))
		testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
	})
}
