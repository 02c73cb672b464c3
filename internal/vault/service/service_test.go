package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/vault/store"
	"idreclaim/pkg/domainerrors"
	"idreclaim/pkg/sentinel"
)

type recordedAlert struct {
	ownerID      string
	documentType string
	location     string
}

type fakeAlerts struct {
	alerts []recordedAlert
}

func (a *fakeAlerts) ScanAlert(_ context.Context, ownerID, documentType, location string) error {
	a.alerts = append(a.alerts, recordedAlert{ownerID, documentType, location})
	return nil
}

type ServiceSuite struct {
	suite.Suite
	alerts *fakeAlerts
	svc    *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.alerts = &fakeAlerts{}
	s.svc = New(store.NewInMemoryStore(), s.alerts, slog.New(slog.DiscardHandler))
}

func (s *ServiceSuite) asUser(userID string) context.Context {
	return middleware.WithUserID(context.Background(), userID)
}

func (s *ServiceSuite) TestGetOrCreate() {
	s.Run("requires authentication", func() {
		_, err := s.svc.GetOrCreate(context.Background())
		s.True(domainerrors.HasCode(err, domainerrors.CodeUnauthorized))
	})

	s.Run("one vault per owner", func() {
		first, err := s.svc.GetOrCreate(s.asUser("owner-1"))
		s.Require().NoError(err)
		s.True(first.Created)
		s.Len(first.Vault.Slug, 16)

		second, err := s.svc.GetOrCreate(s.asUser("owner-1"))
		s.Require().NoError(err)
		s.False(second.Created)
		s.Equal(first.Vault.Slug, second.Vault.Slug)

		other, err := s.svc.GetOrCreate(s.asUser("owner-2"))
		s.Require().NoError(err)
		s.True(other.Created)
		s.NotEqual(first.Vault.Slug, other.Vault.Slug)
	})
}

func (s *ServiceSuite) TestResolveAndExists() {
	created, err := s.svc.GetOrCreate(s.asUser("owner-1"))
	s.Require().NoError(err)
	slug := created.Vault.Slug

	ownerID, err := s.svc.Resolve(context.Background(), slug)
	s.Require().NoError(err)
	s.Equal("owner-1", ownerID)

	_, err = s.svc.Resolve(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)

	exists, err := s.svc.Exists(context.Background(), slug)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.svc.Exists(context.Background(), "missing")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *ServiceSuite) TestNotifyScan() {
	created, err := s.svc.GetOrCreate(s.asUser("owner-1"))
	s.Require().NoError(err)

	s.Run("alerts the owner", func() {
		err := s.svc.NotifyScan(context.Background(), created.Vault.Slug, "National ID", "Akwa")
		s.Require().NoError(err)
		s.Require().Len(s.alerts.alerts, 1)
		s.Equal("owner-1", s.alerts.alerts[0].ownerID)
		s.Equal("Akwa", s.alerts.alerts[0].location)
	})

	s.Run("unknown slug not found", func() {
		err := s.svc.NotifyScan(context.Background(), "missing", "Passport", "")
		s.True(domainerrors.HasCode(err, domainerrors.CodeNotFound))
	})
}
