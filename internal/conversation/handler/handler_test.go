package handler_test

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"idreclaim/internal/conversation/handler"
	"idreclaim/internal/conversation/models"
	"idreclaim/internal/conversation/service"
	"idreclaim/internal/conversation/store"
	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/realtime"
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

type HandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.DiscardHandler)
	svc := service.New(store.NewInMemoryStore(), realtime.NoopPublisher{}, logger)

	s.router = chi.NewRouter()
	handler.New(svc, stubValidator{}, logger).Register(s.router)
}

func (s *HandlerSuite) authed(req *http.Request, userID string) *http.Request {
	req.Header.Set("Authorization", "Bearer user:"+userID)
	return req
}

func (s *HandlerSuite) start(caller, counterpart string) service.StartResult {
	body := map[string]any{"report_id": uuid.New(), "counterpart_id": counterpart}
	req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/conversations", body), caller)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	return *testutil.UnmarshalResponse[service.StartResult](s.T(), rr)
}

func (s *HandlerSuite) TestStart() {
	s.Run("requires auth", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/conversations", map[string]any{})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("requires report and counterpart", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/conversations", map[string]any{}), "owner-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("self-conversation conflicts", func() {
		body := map[string]any{"report_id": uuid.New(), "counterpart_id": "owner-1"}
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, "/conversations", body), "owner-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusConflict)
	})

	s.Run("creates a thread", func() {
		result := s.start("owner-1", "finder-1")
		s.True(result.Created)
		s.Equal("owner-1", result.Conversation.OwnerID)
	})
}

func (s *HandlerSuite) TestSendAndHistory() {
	conv := s.start("owner-1", "finder-1").Conversation
	path := "/conversations/" + conv.ID.String() + "/messages"

	s.Run("member sends a message", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]any{"body": "hello"}), "finder-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		msg := testutil.UnmarshalResponse[models.Message](s.T(), rr)
		s.Equal("finder-1", msg.SenderID)
	})

	s.Run("non-member rejected", func() {
		req := s.authed(testutil.NewJSONRequest(s.T(), http.MethodPost, path, map[string]any{"body": "hi"}), "stranger")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("member reads history", func() {
		req := s.authed(testutil.NewRequest(s.T(), http.MethodGet, path), "owner-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		messages := testutil.UnmarshalResponse[[]models.Message](s.T(), rr)
		s.Len(*messages, 1)
	})

	s.Run("list shows the thread", func() {
		req := s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/conversations"), "owner-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		conversations := testutil.UnmarshalResponse[[]models.Conversation](s.T(), rr)
		s.Len(*conversations, 1)
	})

	s.Run("malformed id rejected", func() {
		req := s.authed(testutil.NewRequest(s.T(), http.MethodGet, "/conversations/nope/messages"), "owner-1")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})
}
