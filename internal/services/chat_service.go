package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/events"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
)

var (
	ErrNotParticipant     = errors.New("not a participant of this conversation")
	ErrConversationClosed = errors.New("conversation is closed")
)

// MessageBroadcaster pushes a new message to connected websocket clients.
// The chat hub implements it; a nil broadcaster degrades to polling.
type MessageBroadcaster interface {
	BroadcastMessage(conversationID uuid.UUID, message *models.ChatMessage)
}

// ChatEventPublisher emits chat events to the broker for consumers such as
// notification workers. *events.Publisher implements it.
type ChatEventPublisher interface {
	PublishChatMessageSent(event events.ChatEvent)
}

// ChatService manages support conversations between customers and suppliers
type ChatService struct {
	chats       *repository.ChatRepository
	suppliers   *repository.SuppliersRepository
	users       *repository.UsersRepository
	broadcaster MessageBroadcaster
	publisher   ChatEventPublisher
	logger      *logrus.Entry
}

func NewChatService(
	chats *repository.ChatRepository,
	suppliers *repository.SuppliersRepository,
	users *repository.UsersRepository,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *ChatService {
	s := &ChatService{
		chats:     chats,
		suppliers: suppliers,
		users:     users,
		logger:    logger.WithField("service", "chat"),
	}
	if publisher != nil {
		s.publisher = publisher
	}
	return s
}

// SetBroadcaster wires the websocket hub after construction
func (s *ChatService) SetBroadcaster(b MessageBroadcaster) {
	s.broadcaster = b
}

// StartConversation opens a thread with a supplier, reusing an existing open
// thread for the same customer/supplier/product.
func (s *ChatService) StartConversation(customer *models.User, req *models.StartConversationRequest) (*models.Conversation, error) {
	supplierID, err := uuid.Parse(req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("invalid supplier id: %w", err)
	}
	if _, err := s.suppliers.GetSupplierByID(supplierID); err != nil {
		return nil, fmt.Errorf("supplier not found: %w", err)
	}

	var productID *uuid.UUID
	if req.ProductID != nil && *req.ProductID != "" {
		id, err := uuid.Parse(*req.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product id: %w", err)
		}
		productID = &id
	}

	if existing, err := s.chats.FindConversation(customer.ID, supplierID, productID); err == nil {
		// Append to the existing thread instead of opening a duplicate
		if _, err := s.SendMessage(customer, existing.ID, &models.SendMessageRequest{Body: req.Body}); err != nil {
			return nil, err
		}
		return s.chats.GetConversationByID(existing.ID)
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	conversation := &models.Conversation{
		CustomerID: customer.ID,
		SupplierID: supplierID,
		ProductID:  productID,
		Subject:    req.Subject,
		Status:     models.ConversationStatusOpen,
	}
	firstMessage := &models.ChatMessage{
		SenderID:   customer.ID,
		SenderRole: customer.Role,
		SenderName: fmt.Sprintf("%s %s", customer.FirstName, customer.LastName),
		Body:       req.Body,
	}
	if err := s.chats.CreateConversation(conversation, firstMessage); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"conversationId": conversation.ID,
		"customerId":     customer.ID,
		"supplierId":     supplierID,
	}).Info("Conversation started")

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage(conversation.ID, firstMessage)
	}
	s.publishMessageSent(conversation.ID, firstMessage)
	return conversation, nil
}

// publishMessageSent emits the chat event for downstream consumers such as
// notification workers.
func (s *ChatService) publishMessageSent(conversationID uuid.UUID, message *models.ChatMessage) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishChatMessageSent(events.ChatEvent{
		ConversationID: conversationID.String(),
		MessageID:      message.ID.String(),
		SenderID:       message.SenderID.String(),
		SenderRole:     string(message.SenderRole),
	})
}

// requireParticipant checks the acting user belongs to the conversation.
// Admins can read any thread.
func (s *ChatService) requireParticipant(user *models.User, conversation *models.Conversation) error {
	switch user.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleSupplier:
		if user.SupplierID != nil && *user.SupplierID == conversation.SupplierID {
			return nil
		}
	default:
		if user.ID == conversation.CustomerID {
			return nil
		}
	}
	return ErrNotParticipant
}

// SendMessage posts a message into an open conversation
func (s *ChatService) SendMessage(user *models.User, conversationID uuid.UUID, req *models.SendMessageRequest) (*models.ChatMessage, error) {
	conversation, err := s.chats.GetConversationByID(conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(user, conversation); err != nil {
		return nil, err
	}
	if conversation.Status == models.ConversationStatusClosed {
		return nil, ErrConversationClosed
	}

	message := &models.ChatMessage{
		ConversationID: conversationID,
		SenderID:       user.ID,
		SenderRole:     user.Role,
		SenderName:     fmt.Sprintf("%s %s", user.FirstName, user.LastName),
		Body:           req.Body,
	}
	if err := s.chats.AddMessage(message); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMessage(conversationID, message)
	}
	s.publishMessageSent(conversationID, message)
	return message, nil
}

// GetConversations lists the user's threads with unread counts
func (s *ChatService) GetConversations(user *models.User, status *models.ConversationStatus, page, limit int) ([]models.Conversation, int64, error) {
	var customerID, supplierID *uuid.UUID
	switch user.Role {
	case models.RoleSupplier:
		supplierID = user.SupplierID
	case models.RoleAdmin:
		// Admins see everything
	default:
		customerID = &user.ID
	}

	conversations, total, err := s.chats.GetConversations(customerID, supplierID, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	for i := range conversations {
		unread, err := s.chats.CountUnread(conversations[i].ID, user.ID)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to count unread messages")
			continue
		}
		conversations[i].UnreadCount = unread
	}

	return conversations, total, nil
}

// GetMessages pages through a conversation, marking it read for the viewer
func (s *ChatService) GetMessages(user *models.User, conversationID uuid.UUID, page, limit int) ([]models.ChatMessage, int64, error) {
	conversation, err := s.chats.GetConversationByID(conversationID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.requireParticipant(user, conversation); err != nil {
		return nil, 0, err
	}

	messages, total, err := s.chats.GetMessages(conversationID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if err := s.chats.MarkMessagesRead(conversationID, user.ID); err != nil {
		s.logger.WithError(err).Warn("Failed to mark messages read")
	}

	return messages, total, nil
}

// CloseConversation closes a thread. Either participant may close it.
func (s *ChatService) CloseConversation(user *models.User, conversationID uuid.UUID) (*models.Conversation, error) {
	conversation, err := s.chats.GetConversationByID(conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireParticipant(user, conversation); err != nil {
		return nil, err
	}
	if err := s.chats.UpdateConversationStatus(conversationID, models.ConversationStatusClosed); err != nil {
		return nil, err
	}
	return s.chats.GetConversationByID(conversationID)
}

// CanAccessConversation reports whether a user may join a thread's websocket
func (s *ChatService) CanAccessConversation(user *models.User, conversationID uuid.UUID) error {
	conversation, err := s.chats.GetConversationByID(conversationID)
	if err != nil {
		return err
	}
	return s.requireParticipant(user, conversation)
}
