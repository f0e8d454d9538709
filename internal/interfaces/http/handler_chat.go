package http

import (
	"net/http"

	"chatdesk/internal/entities"
	"chatdesk/internal/usecases"

	"github.com/gin-gonic/gin"
)

type chatRequest struct {
	Name                *string `json:"name"`
	ClientDescription   *string `json:"client_description"`
	SpecialInstructions *string `json:"special_instructions"`
}

func (r *chatRequest) sanitize() string {
	r.Name = sanitizePtr(r.Name)
	r.ClientDescription = sanitizePtr(r.ClientDescription)
	r.SpecialInstructions = sanitizePtr(r.SpecialInstructions)
	if !validOptional(r.Name, MaxNameLength) {
		return "Chat name too long"
	}
	if !validOptional(r.ClientDescription, MaxInstructionsLength) || !validOptional(r.SpecialInstructions, MaxInstructionsLength) {
		return "Description or instructions too long"
	}
	return ""
}

func (h *Handler) CreateChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if msg := req.sanitize(); msg != "" {
		badRequest(c, msg)
		return
	}
	if req.Name == nil {
		badRequest(c, "Chat name is required")
		return
	}

	chat, err := h.chats.Create(c.Request.Context(), currentUser(c), usecases.ChatInput{
		Name:                *req.Name,
		ClientDescription:   req.ClientDescription,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, chat)
}

func (h *Handler) ListChats(c *gin.Context) {
	page, err := h.chats.List(c.Request.Context(), currentUser(c), pageParams(c, 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetChat(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	chat, err := h.chats.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *Handler) GetChatWithMessages(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	chat, err := h.chats.GetWithMessages(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *Handler) ListChatMessages(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	page, err := h.chats.Messages(c.Request.Context(), currentUser(c), id, pageParams(c, 50))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) UpdateChat(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if msg := req.sanitize(); msg != "" {
		badRequest(c, msg)
		return
	}

	chat, err := h.chats.Update(c.Request.Context(), currentUser(c), id, entities.ChatPatch{
		Name:                req.Name,
		ClientDescription:   req.ClientDescription,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat)
}

func (h *Handler) DeleteChat(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.chats.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted successfully"})
}
