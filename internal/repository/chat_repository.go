package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateConversation starts a thread with its first message in one tx
func (r *ChatRepository) CreateConversation(conversation *models.Conversation, firstMessage *models.ChatMessage) error {
	if conversation.ID == uuid.Nil {
		conversation.ID = uuid.New()
	}
	now := time.Now()
	conversation.CreatedAt = now
	conversation.UpdatedAt = now
	conversation.LastMessageAt = &now

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conversation).Error; err != nil {
			return err
		}
		firstMessage.ConversationID = conversation.ID
		if firstMessage.ID == uuid.Nil {
			firstMessage.ID = uuid.New()
		}
		firstMessage.CreatedAt = now
		return tx.Create(firstMessage).Error
	})
}

// GetConversationByID retrieves a conversation without its messages
func (r *ChatRepository) GetConversationByID(conversationID uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.Where("id = ?", conversationID).First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// FindConversation locates an existing OPEN thread for the same
// customer/supplier/product so repeated inquiries reuse it.
func (r *ChatRepository) FindConversation(customerID, supplierID uuid.UUID, productID *uuid.UUID) (*models.Conversation, error) {
	query := r.db.
		Where("customer_id = ? AND supplier_id = ?", customerID, supplierID).
		Where("status = ?", models.ConversationStatusOpen)
	if productID != nil {
		query = query.Where("product_id = ?", *productID)
	} else {
		query = query.Where("product_id IS NULL")
	}

	var conversation models.Conversation
	if err := query.First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// GetConversations lists threads for a customer or supplier, most recent first
func (r *ChatRepository) GetConversations(customerID, supplierID *uuid.UUID, status *models.ConversationStatus, page, limit int) ([]models.Conversation, int64, error) {
	var conversations []models.Conversation
	var total int64

	query := r.db.Model(&models.Conversation{})
	if customerID != nil {
		query = query.Where("customer_id = ?", *customerID)
	}
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("last_message_at DESC NULLS LAST").
		Offset(offset).
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, 0, err
	}

	return conversations, total, nil
}

// AddMessage appends a message and bumps the thread timestamp
func (r *ChatRepository) AddMessage(message *models.ChatMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	message.CreatedAt = time.Now()

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", message.ConversationID).
			Updates(map[string]interface{}{
				"last_message_at": message.CreatedAt,
				"updated_at":      message.CreatedAt,
			}).Error
	})
}

// GetMessages pages through a conversation's messages, oldest first
func (r *ChatRepository) GetMessages(conversationID uuid.UUID, page, limit int) ([]models.ChatMessage, int64, error) {
	var messages []models.ChatMessage
	var total int64

	query := r.db.Model(&models.ChatMessage{}).Where("conversation_id = ?", conversationID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// MarkMessagesRead marks every message not sent by the reader as read
func (r *ChatRepository) MarkMessagesRead(conversationID, readerID uuid.UUID) error {
	return r.db.Model(&models.ChatMessage{}).
		Where("conversation_id = ?", conversationID).
		Where("sender_id <> ?", readerID).
		Where("read_at IS NULL").
		Update("read_at", time.Now()).Error
}

// CountUnread counts messages addressed to the reader that are still unread
func (r *ChatRepository) CountUnread(conversationID, readerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.ChatMessage{}).
		Where("conversation_id = ?", conversationID).
		Where("sender_id <> ?", readerID).
		Where("read_at IS NULL").
		Count(&count).Error
	return count, err
}

// UpdateConversationStatus opens or closes a thread
func (r *ChatRepository) UpdateConversationStatus(conversationID uuid.UUID, status models.ConversationStatus) error {
	return r.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
