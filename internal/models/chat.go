package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConversationStatus represents the state of a support conversation
type ConversationStatus string

const (
	ConversationStatusOpen   ConversationStatus = "OPEN"
	ConversationStatusClosed ConversationStatus = "CLOSED"
)

// Conversation is a chat thread between a customer and a supplier, optionally
// about a specific product.
type Conversation struct {
	ID         uuid.UUID          `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CustomerID uuid.UUID          `json:"customerId" gorm:"type:uuid;not null;index:idx_conversations_customer"`
	SupplierID uuid.UUID          `json:"supplierId" gorm:"type:uuid;not null;index:idx_conversations_supplier"`
	ProductID  *uuid.UUID         `json:"productId,omitempty" gorm:"type:uuid;index"`
	Subject    string             `json:"subject" gorm:"not null"`
	Status     ConversationStatus `json:"status" gorm:"type:varchar(10);not null;default:'OPEN';index"`

	LastMessageAt *time.Time `json:"lastMessageAt,omitempty" gorm:"index"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Messages []ChatMessage `json:"messages,omitempty" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`

	// UnreadCount is computed per viewer, not persisted
	UnreadCount int64 `json:"unreadCount" gorm:"-"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ChatMessage is a single message inside a conversation
type ChatMessage struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	ConversationID uuid.UUID `json:"conversationId" gorm:"type:uuid;not null;index:idx_chat_messages_conversation"`
	SenderID       uuid.UUID `json:"senderId" gorm:"type:uuid;not null"`
	SenderRole     UserRole  `json:"senderRole" gorm:"type:varchar(20);not null"`
	SenderName     string    `json:"senderName"`
	Body           string    `json:"body" gorm:"type:text;not null"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// StartConversationRequest opens a new thread with a supplier
type StartConversationRequest struct {
	SupplierID string  `json:"supplierId" binding:"required"`
	ProductID  *string `json:"productId,omitempty"`
	Subject    string  `json:"subject" binding:"required"`
	Body       string  `json:"body" binding:"required"`
}

// SendMessageRequest posts a message into an existing conversation
type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

type ConversationResponse struct {
	Success bool          `json:"success"`
	Data    *Conversation `json:"data"`
	Message *string       `json:"message,omitempty"`
}

type ConversationListResponse struct {
	Success    bool            `json:"success"`
	Data       []Conversation  `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}

type ChatMessageListResponse struct {
	Success    bool            `json:"success"`
	Data       []ChatMessage   `json:"data"`
	Pagination *PaginationInfo `json:"pagination"`
}
