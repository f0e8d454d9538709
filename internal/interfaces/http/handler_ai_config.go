package http

import (
	"net/http"

	"chatdesk/internal/entities"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type aiConfigRequest struct {
	ClientDescription   *string    `json:"client_description"`
	SpecialInstructions *string    `json:"special_instructions"`
	ChatID              *uuid.UUID `json:"chat_id"`
}

func (r *aiConfigRequest) patch() (entities.AIConfigPatch, string) {
	r.ClientDescription = sanitizePtr(r.ClientDescription)
	r.SpecialInstructions = sanitizePtr(r.SpecialInstructions)
	if !validOptional(r.ClientDescription, MaxInstructionsLength) || !validOptional(r.SpecialInstructions, MaxInstructionsLength) {
		return entities.AIConfigPatch{}, "Description or instructions too long"
	}
	return entities.AIConfigPatch{
		ClientDescription:   r.ClientDescription,
		SpecialInstructions: r.SpecialInstructions,
	}, ""
}

func (h *Handler) bindAIConfig(c *gin.Context) (aiConfigRequest, entities.AIConfigPatch, bool) {
	var req aiConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return req, entities.AIConfigPatch{}, false
	}
	patch, msg := req.patch()
	if msg != "" {
		badRequest(c, msg)
		return req, patch, false
	}
	return req, patch, true
}

// ownedChat checks the chat_id path parameter against the caller
func (h *Handler) ownedChat(c *gin.Context) (*entities.Chat, bool) {
	chatID, ok := uuidParam(c, "chat_id")
	if !ok {
		return nil, false
	}
	chat, err := h.guard.AuthorizeChat(c.Request.Context(), currentUser(c), chatID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return chat, true
}

// CreateAIConfig inserts a global row, or a chat row when chat_id is given; 409 if it exists
func (h *Handler) CreateAIConfig(c *gin.Context) {
	req, patch, ok := h.bindAIConfig(c)
	if !ok {
		return
	}
	user := currentUser(c)
	if req.ChatID != nil {
		if _, err := h.guard.AuthorizeChat(c.Request.Context(), user, *req.ChatID); err != nil {
			respondError(c, err)
			return
		}
	}

	cfg, err := h.aiConfig.Create(c.Request.Context(), user.CompanyID, req.ChatID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (h *Handler) GetGlobalAIConfig(c *gin.Context) {
	cfg, err := h.aiConfig.Get(c.Request.Context(), currentUser(c).CompanyID, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) UpsertGlobalAIConfig(c *gin.Context) {
	_, patch, ok := h.bindAIConfig(c)
	if !ok {
		return
	}
	cfg, err := h.aiConfig.UpsertGlobal(c.Request.Context(), currentUser(c).CompanyID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) DeleteGlobalAIConfig(c *gin.Context) {
	if err := h.aiConfig.Delete(c.Request.Context(), currentUser(c).CompanyID, nil); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "AI configuration deleted successfully"})
}

func (h *Handler) GetChatAIConfig(c *gin.Context) {
	chat, ok := h.ownedChat(c)
	if !ok {
		return
	}
	cfg, err := h.aiConfig.Get(c.Request.Context(), chat.CompanyID, &chat.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) UpsertChatAIConfig(c *gin.Context) {
	chat, ok := h.ownedChat(c)
	if !ok {
		return
	}
	_, patch, ok := h.bindAIConfig(c)
	if !ok {
		return
	}
	cfg, err := h.aiConfig.UpsertChat(c.Request.Context(), chat.CompanyID, chat.ID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) DeleteChatAIConfig(c *gin.Context) {
	chat, ok := h.ownedChat(c)
	if !ok {
		return
	}
	if err := h.aiConfig.Delete(c.Request.Context(), chat.CompanyID, &chat.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "AI configuration deleted successfully"})
}

// GetEffectiveAIConfig shows which prompt a generation would use for ?chat_id (or the company default)
func (h *Handler) GetEffectiveAIConfig(c *gin.Context) {
	ctx := c.Request.Context()
	user := currentUser(c)

	var chatID *uuid.UUID
	if raw := c.Query("chat_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "Invalid chat id")
			return
		}
		if _, err := h.guard.AuthorizeChat(ctx, user, id); err != nil {
			respondError(c, err)
			return
		}
		chatID = &id
	}

	prompt, err := h.aiConfig.EffectivePrompt(ctx, user.CompanyID, chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	cfg, err := h.aiConfig.EffectiveConfig(ctx, user.CompanyID, chatID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"system_prompt": prompt, "configuration": cfg})
}
