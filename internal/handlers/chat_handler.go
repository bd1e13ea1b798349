package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/chat"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/middleware"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/models"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/repository"
	"github.com/matheuslopes2024/GastroCatalogo-sub001/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
	hub  *chat.Hub
}

func NewChatHandler(chatService *services.ChatService, hub *chat.Hub) *ChatHandler {
	return &ChatHandler{chat: chatService, hub: hub}
}

// StartConversation opens a support thread with a supplier
// @Summary Start a conversation
// @Description Opens a thread with a supplier, optionally about a specific product. An existing open thread is reused.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conversation body models.StartConversationRequest true "Conversation request"
// @Success 201 {object} models.ConversationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /chat/conversations [post]
func (h *ChatHandler) StartConversation(c *gin.Context) {
	var req models.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	conversation, err := h.chat.StartConversation(middleware.CurrentUser(c), &req)
	if err != nil {
		if repository.IsNotFound(err) {
			respondNotFound(c, "Supplier or product not found")
			return
		}
		respondInternalError(c, err)
		return
	}
	respondData(c, http.StatusCreated, conversation)
}

// ListConversations lists the caller's conversations
// @Summary List conversations
// @Description Customers and suppliers see their own threads; admins see all. Each thread carries its unread count.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter: OPEN or CLOSED"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.ListResponse
// @Router /chat/conversations [get]
func (h *ChatHandler) ListConversations(c *gin.Context) {
	page, limit := parsePagination(c)

	var status *models.ConversationStatus
	if raw := c.Query("status"); raw != "" {
		s := models.ConversationStatus(raw)
		status = &s
	}

	conversations, total, err := h.chat.GetConversations(middleware.CurrentUser(c), status, page, limit)
	if err != nil {
		respondInternalError(c, err)
		return
	}
	respondList(c, conversations, page, limit, total)
}

// SendMessage posts a message into a conversation
// @Summary Send a message
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param message body models.SendMessageRequest true "Message"
// @Success 201 {object} models.SuccessResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /chat/conversations/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	message, err := h.chat.SendMessage(middleware.CurrentUser(c), id, &req)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	respondData(c, http.StatusCreated, message)
}

// GetMessages returns a conversation's messages and marks them read
// @Summary Get conversation messages
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} models.ListResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /chat/conversations/{id}/messages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	messages, total, err := h.chat.GetMessages(middleware.CurrentUser(c), id, page, limit)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	respondList(c, messages, page, limit, total)
}

// CloseConversation closes a thread
// @Summary Close a conversation
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} models.ConversationResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /chat/conversations/{id}/close [post]
func (h *ChatHandler) CloseConversation(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	conversation, err := h.chat.CloseConversation(middleware.CurrentUser(c), id)
	if err != nil {
		h.respondChatError(c, err)
		return
	}
	respondData(c, http.StatusOK, conversation)
}

// Connect upgrades the request to a websocket subscribed to a conversation
// @Summary Join a conversation over websocket
// @Description Upgrades to a websocket. Messages typed into the socket are persisted and fanned out to all connected participants.
// @Tags chat
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 403 {object} models.ErrorResponse
// @Router /chat/conversations/{id}/ws [get]
func (h *ChatHandler) Connect(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.chat.CanAccessConversation(user, id); err != nil {
		h.respondChatError(c, err)
		return
	}

	if err := h.hub.Serve(c.Writer, c.Request, user, id); err != nil {
		// Upgrade failures already wrote to the connection
		c.Abort()
	}
}

func (h *ChatHandler) respondChatError(c *gin.Context, err error) {
	switch err {
	case services.ErrNotParticipant:
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Not a participant in this conversation")
	case services.ErrConversationClosed:
		respondError(c, http.StatusConflict, "CONVERSATION_CLOSED", "Conversation is closed")
	default:
		if repository.IsNotFound(err) {
			respondNotFound(c, "Conversation not found")
			return
		}
		respondInternalError(c, err)
	}
}
