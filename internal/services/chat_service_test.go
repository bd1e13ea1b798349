package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/events"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
)

// MockChatEventPublisher is a mock implementation of ChatEventPublisher
type MockChatEventPublisher struct {
	mock.Mock
}

var _ ChatEventPublisher = (*MockChatEventPublisher)(nil)

func (m *MockChatEventPublisher) PublishChatMessageSent(event events.ChatEvent) {
	m.Called(event)
}

func TestPublishMessageSent_EmitsEvent(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	pub := new(MockChatEventPublisher)
	service := &ChatService{publisher: pub, logger: logger.WithField("service", "chat")}

	conversationID := uuid.New()
	message := &models.ChatMessage{
		ID:         uuid.New(),
		SenderID:   uuid.New(),
		SenderRole: models.RoleCustomer,
	}

	pub.On("PublishChatMessageSent", mock.MatchedBy(func(e events.ChatEvent) bool {
		return e.ConversationID == conversationID.String() &&
			e.MessageID == message.ID.String() &&
			e.SenderID == message.SenderID.String() &&
			e.SenderRole == string(models.RoleCustomer)
	})).Return()

	service.publishMessageSent(conversationID, message)

	pub.AssertExpectations(t)
}

func TestPublishMessageSent_NoPublisherConfigured(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	service := &ChatService{logger: logger.WithField("service", "chat")}

	assert.NotPanics(t, func() {
		service.publishMessageSent(uuid.New(), &models.ChatMessage{})
	})
}
