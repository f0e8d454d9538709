package http

import (
	"net/http"
	"strings"

	"chatdesk/internal/entities"
	"chatdesk/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type messageRequest struct {
	ChatID        uuid.UUID `json:"chat_id" binding:"required"`
	Content       string    `json:"content"`
	Role          string    `json:"role"`
	IsAIGenerated bool      `json:"is_ai_generated"`
}

type importEntry struct {
	Content       string `json:"content"`
	Role          string `json:"role"`
	IsAIGenerated bool   `json:"is_ai_generated"`
}

type importRequest struct {
	ChatID   uuid.UUID     `json:"chat_id" binding:"required"`
	Messages []importEntry `json:"messages"`
}

type generateRequest struct {
	ChatID               uuid.UUID `json:"chat_id" binding:"required"`
	ContextMessagesCount int       `json:"context_messages_count"`
}

type reviseRequest struct {
	MessageID            uuid.UUID `json:"message_id" binding:"required"`
	RevisionInstructions string    `json:"revision_instructions"`
}

func (h *Handler) CreateMessage(c *gin.Context) {
	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	req.Content = SanitizeString(req.Content)
	if !ValidateLength(req.Content, 1, MaxContentLength) {
		badRequest(c, "Message content must be between 1 and 50000 characters")
		return
	}

	msg, err := h.messages.Create(c.Request.Context(), currentUser(c), req.ChatID, usecases.MessageInput{
		Content:       req.Content,
		Role:          entities.MessageRole(req.Role),
		IsAIGenerated: req.IsAIGenerated,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) GetMessage(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	msg, err := h.messages.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *Handler) UpdateMessage(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	req.Content = SanitizeString(req.Content)
	if !ValidateLength(req.Content, 1, MaxContentLength) {
		badRequest(c, "Message content must be between 1 and 50000 characters")
		return
	}

	msg, err := h.messages.UpdateContent(c.Request.Context(), currentUser(c), id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.messages.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}

// ImportMessages appends a transcript; invalid entries are counted as skipped
func (h *Handler) ImportMessages(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if len(req.Messages) > MaxImportBatch {
		badRequest(c, "Too many messages in one import")
		return
	}

	entries := make([]usecases.MessageInput, 0, len(req.Messages))
	for _, e := range req.Messages {
		content := SanitizeString(e.Content)
		if !ValidateLength(content, 0, MaxContentLength) {
			content = ""
		}
		entries = append(entries, usecases.MessageInput{
			Content:       content,
			Role:          entities.MessageRole(strings.ToLower(strings.TrimSpace(e.Role))),
			IsAIGenerated: e.IsAIGenerated,
		})
	}

	result, err := h.messages.Import(c.Request.Context(), currentUser(c), req.ChatID, entries)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) GenerateAIResponse(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if req.ContextMessagesCount < 0 {
		badRequest(c, "context_messages_count must not be negative")
		return
	}

	ctx := c.Request.Context()
	if _, err := h.guard.AuthorizeChat(ctx, currentUser(c), req.ChatID); err != nil {
		respondError(c, err)
		return
	}
	msg, err := h.generation.GenerateReply(ctx, req.ChatID, req.ContextMessagesCount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *Handler) ReviseWithAI(c *gin.Context) {
	var req reviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	req.RevisionInstructions = SanitizeString(req.RevisionInstructions)
	if !ValidateLength(strings.TrimSpace(req.RevisionInstructions), 1, MaxInstructionsLength) {
		badRequest(c, "Revision instructions are required")
		return
	}

	ctx := c.Request.Context()
	if _, _, err := h.guard.AuthorizeMessage(ctx, currentUser(c), req.MessageID); err != nil {
		respondError(c, err)
		return
	}
	msg, err := h.generation.ReviseReply(ctx, req.MessageID, req.RevisionInstructions)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}
