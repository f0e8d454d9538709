package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminStats returns platform statistics
func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) AdminListCompanies(c *gin.Context) {
	companies, err := h.dashboard.ListCompanies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, companies)
}

type companyRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) AdminCreateCompany(c *gin.Context) {
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	req.Name = SanitizeString(req.Name)
	if !ValidateLength(req.Name, 1, MaxNameLength) {
		badRequest(c, "Company name must be between 1 and 255 characters")
		return
	}
	company, err := h.dashboard.CreateCompany(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, company)
}

func (h *Handler) AdminRenameCompany(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req companyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	req.Name = SanitizeString(req.Name)
	if !ValidateLength(req.Name, 1, MaxNameLength) {
		badRequest(c, "Company name must be between 1 and 255 characters")
		return
	}
	company, err := h.dashboard.RenameCompany(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, company)
}

func (h *Handler) AdminDeleteCompany(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.dashboard.DeleteCompany(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Company deleted successfully"})
}

// AdminListUsers lists every user, or one company's with ?company_id
func (h *Handler) AdminListUsers(c *gin.Context) {
	var companyID *uuid.UUID
	if raw := c.Query("company_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "Invalid company id")
			return
		}
		companyID = &id
	}
	users, err := h.dashboard.ListUsers(c.Request.Context(), companyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) AdminCreateUser(c *gin.Context) {
	var req struct {
		Email       string    `json:"email" binding:"required"`
		Password    string    `json:"password" binding:"required"`
		Name        string    `json:"name" binding:"required"`
		CompanyID   uuid.UUID `json:"company_id" binding:"required"`
		IsSuperuser bool      `json:"is_superuser"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	req.Name = SanitizeString(req.Name)
	if msg := validateAccount(req.Email, req.Password, req.Name); msg != "" {
		badRequest(c, msg)
		return
	}

	user, err := h.dashboard.CreateUser(c.Request.Context(), req.CompanyID, req.Email, req.Password, strings.TrimSpace(req.Name), req.IsSuperuser)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// AdminUpdateUserStatus enables/disables a user account
func (h *Handler) AdminUpdateUserStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var payload struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	user, err := h.dashboard.SetUserActive(c.Request.Context(), currentUser(c), id, *payload.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.dashboard.DeleteUser(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
