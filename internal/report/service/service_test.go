package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/report/models"
	"idreclaim/internal/report/store"
	"idreclaim/pkg/domainerrors"
	"idreclaim/pkg/sentinel"
)

type fakeMatcher struct {
	lostCalls  int
	foundCalls int
	vaultCalls int
	vaultOwner string
	count      int
	err        error
}

func (m *fakeMatcher) MatchLost(context.Context, models.LostReport) (int, error) {
	m.lostCalls++
	return m.count, m.err
}

func (m *fakeMatcher) MatchFound(context.Context, models.FoundReport) (int, error) {
	m.foundCalls++
	return m.count, m.err
}

func (m *fakeMatcher) MatchVaultTarget(_ context.Context, _ models.FoundReport, ownerID string) (int, error) {
	m.vaultCalls++
	m.vaultOwner = ownerID
	return m.count, m.err
}

type fakeVaults struct {
	slugs map[string]string
}

func (v *fakeVaults) Resolve(_ context.Context, slug string) (string, error) {
	owner, ok := v.slugs[slug]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return owner, nil
}

type ServiceSuite struct {
	suite.Suite
	lost    *store.InMemoryLostStore
	found   *store.InMemoryFoundStore
	matcher *fakeMatcher
	vaults  *fakeVaults
	svc     *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.lost = store.NewInMemoryLostStore()
	s.found = store.NewInMemoryFoundStore()
	s.matcher = &fakeMatcher{}
	s.vaults = &fakeVaults{slugs: map[string]string{"qr-abc": "owner-9"}}
	s.svc = New(s.lost, s.found, s.matcher, s.vaults, slog.New(slog.DiscardHandler))
}

func (s *ServiceSuite) asUser(userID string) context.Context {
	return middleware.WithUserID(context.Background(), userID)
}

func (s *ServiceSuite) lostInput() SubmitLostInput {
	return SubmitLostInput{
		DocumentType: "National ID",
		FullName:     "Jane Doe",
		LastLocation: "Douala",
	}
}

func (s *ServiceSuite) foundInput() SubmitFoundInput {
	return SubmitFoundInput{
		DocumentType:   "National ID",
		FullName:       "Jane Doe",
		Region:         "Littoral",
		LocationDetail: "Akwa roundabout",
		ImageURL:       "https://img.example/found.jpg",
	}
}

func (s *ServiceSuite) TestSubmitLost() {
	s.Run("requires authentication", func() {
		_, err := s.svc.SubmitLost(context.Background(), s.lostInput())
		s.True(domainerrors.HasCode(err, domainerrors.CodeUnauthorized))
	})

	s.Run("rejects missing fields", func() {
		input := s.lostInput()
		input.FullName = "  "
		_, err := s.svc.SubmitLost(s.asUser("owner-1"), input)
		s.True(domainerrors.HasCode(err, domainerrors.CodeValidation))
	})

	s.Run("saves and reports match outcome", func() {
		s.matcher.count = 2
		result, err := s.svc.SubmitLost(s.asUser("owner-1"), s.lostInput())
		s.Require().NoError(err)
		s.True(result.Matched)
		s.Equal(2, result.MatchCount)
		s.Contains(result.Message, "2 possible matches")
		s.Equal(models.StatusMatched, result.Report.Status)
		s.Equal(1, s.matcher.lostCalls)

		saved, err := s.lost.FindByID(context.Background(), result.Report.ID)
		s.Require().NoError(err)
		s.Equal("owner-1", saved.OwnerID)
	})

	s.Run("matching failure degrades but submission succeeds", func() {
		s.matcher.err = errors.New("engine down")
		result, err := s.svc.SubmitLost(s.asUser("owner-1"), s.lostInput())
		s.Require().NoError(err)
		s.False(result.Matched)
		s.Zero(result.MatchCount)
		s.Empty(result.Message)
		s.Equal(models.StatusLost, result.Report.Status)

		_, err = s.lost.FindByID(context.Background(), result.Report.ID)
		s.NoError(err, "report persisted despite matching failure")
	})
}

func (s *ServiceSuite) TestSubmitFound() {
	s.Run("anonymous finder allowed", func() {
		result, err := s.svc.SubmitFound(context.Background(), s.foundInput())
		s.Require().NoError(err)
		s.Equal(models.AnonymousUser, result.Report.FinderID)
		s.Equal(1, s.matcher.foundCalls)
	})

	s.Run("authenticated finder recorded", func() {
		result, err := s.svc.SubmitFound(s.asUser("finder-1"), s.foundInput())
		s.Require().NoError(err)
		s.Equal("finder-1", result.Report.FinderID)
	})

	s.Run("vault slug targets the owner and bypasses scoring", func() {
		input := s.foundInput()
		input.VaultSlug = "qr-abc"
		result, err := s.svc.SubmitFound(context.Background(), input)
		s.Require().NoError(err)
		s.Require().NotNil(result.Report.TargetOwnerID)
		s.Equal("owner-9", *result.Report.TargetOwnerID)
		s.Equal(1, s.matcher.vaultCalls)
		s.Equal("owner-9", s.matcher.vaultOwner)
	})

	s.Run("unknown vault slug rejected", func() {
		input := s.foundInput()
		input.VaultSlug = "qr-missing"
		_, err := s.svc.SubmitFound(context.Background(), input)
		s.True(domainerrors.HasCode(err, domainerrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestMarkRecovered() {
	result, err := s.svc.SubmitLost(s.asUser("owner-1"), s.lostInput())
	s.Require().NoError(err)
	id := result.Report.ID

	s.Run("non-owner rejected", func() {
		_, err := s.svc.MarkRecovered(s.asUser("owner-2"), id)
		s.True(domainerrors.HasCode(err, domainerrors.CodeUnauthorized))
	})

	s.Run("owner closes the report", func() {
		report, err := s.svc.MarkRecovered(s.asUser("owner-1"), id)
		s.Require().NoError(err)
		s.Equal(models.StatusReturned, report.Status)
	})

	s.Run("closing twice conflicts", func() {
		_, err := s.svc.MarkRecovered(s.asUser("owner-1"), id)
		s.True(domainerrors.HasCode(err, domainerrors.CodeConflict))
	})

	s.Run("unknown report not found", func() {
		_, err := s.svc.MarkRecovered(s.asUser("owner-1"), uuid.New())
		s.True(domainerrors.HasCode(err, domainerrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestDelete() {
	lostResult, err := s.svc.SubmitLost(s.asUser("owner-1"), s.lostInput())
	s.Require().NoError(err)
	foundResult, err := s.svc.SubmitFound(s.asUser("finder-1"), s.foundInput())
	s.Require().NoError(err)
	anonResult, err := s.svc.SubmitFound(context.Background(), s.foundInput())
	s.Require().NoError(err)

	s.Run("owner deletes lost report", func() {
		s.True(domainerrors.HasCode(s.svc.DeleteLost(s.asUser("owner-2"), lostResult.Report.ID), domainerrors.CodeUnauthorized))
		s.NoError(s.svc.DeleteLost(s.asUser("owner-1"), lostResult.Report.ID))
	})

	s.Run("finder deletes found report", func() {
		s.NoError(s.svc.DeleteFound(s.asUser("finder-1"), foundResult.Report.ID))
	})

	s.Run("anonymous found report has no deletable owner", func() {
		err := s.svc.DeleteFound(s.asUser("finder-1"), anonResult.Report.ID)
		s.True(domainerrors.HasCode(err, domainerrors.CodeUnauthorized))
	})
}

func (s *ServiceSuite) TestFeeds() {
	_, err := s.svc.SubmitLost(s.asUser("owner-1"), s.lostInput())
	s.Require().NoError(err)
	_, err = s.svc.SubmitFound(s.asUser("owner-1"), s.foundInput())
	s.Require().NoError(err)

	s.Run("recent includes both kinds", func() {
		feed, err := s.svc.Recent(context.Background(), 0)
		s.Require().NoError(err)
		s.Len(feed.Lost, 1)
		s.Len(feed.Found, 1)
	})

	s.Run("search requires a query", func() {
		_, err := s.svc.Search(context.Background(), "  ")
		s.True(domainerrors.HasCode(err, domainerrors.CodeValidation))

		_, err = s.svc.Search(context.Background(), "j")
		s.True(domainerrors.HasCode(err, domainerrors.CodeValidation))
	})

	s.Run("search hits both kinds", func() {
		feed, err := s.svc.Search(context.Background(), "jane")
		s.Require().NoError(err)
		s.Len(feed.Lost, 1)
		s.Len(feed.Found, 1)
	})

	s.Run("mine scopes to the caller", func() {
		feed, err := s.svc.Mine(s.asUser("owner-1"))
		s.Require().NoError(err)
		s.Len(feed.Lost, 1)
		s.Len(feed.Found, 1)

		feed, err = s.svc.Mine(s.asUser("owner-2"))
		s.Require().NoError(err)
		s.Empty(feed.Lost)
		s.Empty(feed.Found)
	})
}
