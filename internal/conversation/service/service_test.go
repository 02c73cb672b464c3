package service

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"idreclaim/internal/conversation/store"
	"idreclaim/internal/platform/middleware"
	"idreclaim/internal/realtime"
	"idreclaim/internal/realtime/mocks"
	"idreclaim/pkg/domainerrors"
)

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	publisher *mocks.MockPublisher
	svc       *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.svc = New(store.NewInMemoryStore(), s.publisher, slog.New(slog.DiscardHandler))
}

func (s *ServiceSuite) asUser(userID string) context.Context {
	return middleware.WithUserID(context.Background(), userID)
}

func (s *ServiceSuite) TestStart() {
	reportID := uuid.New()

	s.Run("requires authentication", func() {
		_, err := s.svc.Start(context.Background(), reportID, "finder-1")
		s.True(domainerrors.HasCode(err, domainerrors.CodeUnauthorized))
	})

	s.Run("rejects self-conversation", func() {
		_, err := s.svc.Start(s.asUser("owner-1"), reportID, "owner-1")
		s.True(domainerrors.HasCode(err, domainerrors.CodeConflict))
	})

	s.Run("rejects sentinel counterpart", func() {
		_, err := s.svc.Start(s.asUser("owner-1"), reportID, "anonymous")
		s.True(domainerrors.HasCode(err, domainerrors.CodeConflict))
	})

	s.Run("creates then reuses the thread from either side", func() {
		first, err := s.svc.Start(s.asUser("owner-1"), reportID, "finder-1")
		s.Require().NoError(err)
		s.True(first.Created)

		second, err := s.svc.Start(s.asUser("finder-1"), reportID, "owner-1")
		s.Require().NoError(err)
		s.False(second.Created)
		s.Equal(first.Conversation.ID, second.Conversation.ID)

		third, err := s.svc.Start(s.asUser("owner-1"), uuid.New(), "finder-1")
		s.Require().NoError(err)
		s.False(third.Created, "a different report still lands on the pair's one thread")
		s.Equal(first.Conversation.ID, third.Conversation.ID)
	})
}

func (s *ServiceSuite) TestConcurrentStartConvergesOnOneThread() {
	reportID := uuid.New()
	const attempts = 20

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			caller, counterpart := "owner-1", "finder-1"
			if i%2 == 1 {
				caller, counterpart = counterpart, caller
			}
			result, err := s.svc.Start(s.asUser(caller), reportID, counterpart)
			s.NoError(err)
			ids[i] = result.Conversation.ID
		}()
	}
	wg.Wait()

	for _, id := range ids[1:] {
		s.Equal(ids[0], id)
	}
}

func (s *ServiceSuite) TestSend() {
	reportID := uuid.New()
	started, err := s.svc.Start(s.asUser("owner-1"), reportID, "finder-1")
	s.Require().NoError(err)
	convID := started.Conversation.ID

	s.Run("fans out to thread and both list channels", func() {
		s.publisher.EXPECT().
			Publish(gomock.Any(), realtime.ConversationChannel(convID.String()), realtime.EventMessageNew, gomock.Any()).
			Return(nil)
		s.publisher.EXPECT().
			Publish(gomock.Any(), realtime.ConversationListChannel("owner-1"), realtime.EventMessageNew, gomock.Any()).
			Return(nil)
		s.publisher.EXPECT().
			Publish(gomock.Any(), realtime.ConversationListChannel("finder-1"), realtime.EventMessageNew, gomock.Any()).
			Return(nil)

		msg, err := s.svc.Send(s.asUser("owner-1"), convID, "hello there")
		s.Require().NoError(err)
		s.Equal("owner-1", msg.SenderID)
		s.Equal("hello there", msg.Body)
	})

	s.Run("rejects empty body", func() {
		_, err := s.svc.Send(s.asUser("owner-1"), convID, "   ")
		s.True(domainerrors.HasCode(err, domainerrors.CodeValidation))
	})

	s.Run("rejects non-members", func() {
		_, err := s.svc.Send(s.asUser("stranger"), convID, "hi")
		s.True(domainerrors.HasCode(err, domainerrors.CodeUnauthorized))
	})

	s.Run("unknown conversation not found", func() {
		_, err := s.svc.Send(s.asUser("owner-1"), uuid.New(), "hi")
		s.True(domainerrors.HasCode(err, domainerrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestListAndMessages() {
	reportID := uuid.New()
	started, err := s.svc.Start(s.asUser("owner-1"), reportID, "finder-1")
	s.Require().NoError(err)
	convID := started.Conversation.ID

	s.publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(6)
	_, err = s.svc.Send(s.asUser("owner-1"), convID, "first")
	s.Require().NoError(err)
	_, err = s.svc.Send(s.asUser("finder-1"), convID, "second")
	s.Require().NoError(err)

	s.Run("both members see the conversation", func() {
		for _, user := range []string{"owner-1", "finder-1"} {
			conversations, err := s.svc.ListForUser(s.asUser(user))
			s.Require().NoError(err)
			s.Len(conversations, 1)
		}
	})

	s.Run("messages come back in send order", func() {
		messages, err := s.svc.Messages(s.asUser("finder-1"), convID)
		s.Require().NoError(err)
		s.Require().Len(messages, 2)
		s.Equal("first", messages[0].Body)
		s.Equal("second", messages[1].Body)
	})

	s.Run("non-members cannot read history", func() {
		_, err := s.svc.Messages(s.asUser("stranger"), convID)
		s.True(domainerrors.HasCode(err, domainerrors.CodeUnauthorized))
	})
}
