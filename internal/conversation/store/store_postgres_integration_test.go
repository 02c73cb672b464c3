//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"idreclaim/internal/conversation/models"
	"idreclaim/internal/conversation/store"
	"idreclaim/internal/platform/postgres"
	"idreclaim/pkg/sentinel"
	"idreclaim/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(context.Background(), s.pg.DB))
	s.store = store.NewPostgresStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.Exec(`TRUNCATE conversations CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newConversation(owner, finder string) models.Conversation {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return models.Conversation{
		ID:        uuid.New(),
		ReportID:  uuid.New(),
		OwnerID:   owner,
		FinderID:  finder,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *PostgresStoreSuite) TestGetOrCreateCollapsesOnPair() {
	ctx := context.Background()

	first, created, err := s.store.GetOrCreate(ctx, s.newConversation("owner-1", "finder-1"))
	s.Require().NoError(err)
	s.True(created)

	// Same pair from the other side, different report: must land on the
	// existing row.
	second, created, err := s.store.GetOrCreate(ctx, s.newConversation("finder-1", "owner-1"))
	s.Require().NoError(err)
	s.False(created)
	s.Equal(first.ID, second.ID)

	other, created, err := s.store.GetOrCreate(ctx, s.newConversation("owner-1", "finder-2"))
	s.Require().NoError(err)
	s.True(created)
	s.NotEqual(first.ID, other.ID)
}

func (s *PostgresStoreSuite) TestGetOrCreateConcurrent() {
	ctx := context.Background()
	const attempts = 10

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conv, _, err := s.store.GetOrCreate(ctx, s.newConversation("owner-1", "finder-1"))
			s.NoError(err)
			ids[i] = conv.ID
		}()
	}
	wg.Wait()

	for _, id := range ids[1:] {
		s.Equal(ids[0], id)
	}
}

func (s *PostgresStoreSuite) TestMessagesRoundTrip() {
	ctx := context.Background()
	conv, _, err := s.store.GetOrCreate(ctx, s.newConversation("owner-1", "finder-1"))
	s.Require().NoError(err)

	base := time.Now().UTC().Truncate(time.Microsecond)
	for i, body := range []string{"hello", "is this yours?", "yes!"} {
		msg := models.Message{
			ID:             uuid.New(),
			ConversationID: conv.ID,
			SenderID:       "owner-1",
			Body:           body,
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}
		s.Require().NoError(s.store.SaveMessage(ctx, msg))
	}

	msgs, err := s.store.ListMessages(ctx, conv.ID)
	s.Require().NoError(err)
	s.Require().Len(msgs, 3)
	s.Equal("hello", msgs[0].Body)
	s.Equal("yes!", msgs[2].Body)

	// Message activity bumps the conversation's updated_at.
	listed, err := s.store.ListForUser(ctx, "owner-1")
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal(base.Add(2*time.Second), listed[0].UpdatedAt)
}

func (s *PostgresStoreSuite) TestMessageToUnknownConversation() {
	ctx := context.Background()
	err := s.store.SaveMessage(ctx, models.Message{
		ID:             uuid.New(),
		ConversationID: uuid.New(),
		SenderID:       "owner-1",
		Body:           "hello?",
		CreatedAt:      time.Now().UTC(),
	})
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.ListMessages(ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
