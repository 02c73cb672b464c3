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
	"idreclaim/internal/vault/handler"
	"idreclaim/internal/vault/service"
	"idreclaim/internal/vault/store"
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

type fakeAlerts struct{ count int }

func (a *fakeAlerts) ScanAlert(context.Context, string, string, string) error {
	a.count++
	return nil
}

type HandlerSuite struct {
	suite.Suite
	router chi.Router
	alerts *fakeAlerts
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	s.alerts = &fakeAlerts{}
	svc := service.New(store.NewInMemoryStore(), s.alerts, logger)

	s.router = chi.NewRouter()
	handler.New(svc, stubValidator{}, logger).Register(s.router)
}

func (s *HandlerSuite) createVault(userID string) service.GetOrCreateResult {
	req := testutil.NewRequest(s.T(), http.MethodPost, "/vault")
	req.Header.Set("Authorization", "Bearer user:"+userID)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	return *testutil.UnmarshalResponse[service.GetOrCreateResult](s.T(), rr)
}

func (s *HandlerSuite) TestCreateRequiresAuth() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/vault"))
	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *HandlerSuite) TestCreateThenFetchIsSameVault() {
	created := s.createVault("owner-1")

	req := testutil.NewRequest(s.T(), http.MethodPost, "/vault")
	req.Header.Set("Authorization", "Bearer user:owner-1")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	again := testutil.UnmarshalResponse[service.GetOrCreateResult](s.T(), rr)
	s.Equal(created.Vault.Slug, again.Vault.Slug)
}

func (s *HandlerSuite) TestScanPage() {
	created := s.createVault("owner-1")

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/v/"+created.Vault.Slug))
	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/v/unknown"))
	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
}

func (s *HandlerSuite) TestNotifyScanIsPublic() {
	created := s.createVault("owner-1")
	body := map[string]string{"document_type": "Passport", "location": "Akwa"}

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/v/"+created.Vault.Slug+"/notify", body)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusAccepted)
	s.Equal(1, s.alerts.count)

	req = testutil.NewJSONRequest(s.T(), http.MethodPost, "/v/unknown/notify", body)
	rr = testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusNotFound)
}
