package http

import (
	"errors"
	"net/http"
	"strings"

	"chatdesk/internal/entities"
	"chatdesk/internal/usecases"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name"`
}

type updateMeRequest struct {
	Email    *string `json:"email"`
	Name     *string `json:"name"`
	Password *string `json:"password"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	pair, _, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidCredentials) {
			err = entities.ErrInvalidToken
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}

// Logout is client side: tokens are stateless and stay valid until they expire.
func (h *Handler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (h *Handler) Register(c *gin.Context) {
	if !h.opts.AllowRegistration {
		c.JSON(http.StatusForbidden, gin.H{"error": "Registration is disabled"})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	req.Name = SanitizeString(req.Name)
	req.CompanyName = SanitizeString(req.CompanyName)
	if msg := validateAccount(req.Email, req.Password, req.Name); msg != "" {
		badRequest(c, msg)
		return
	}
	if !ValidateLength(req.CompanyName, 0, MaxNameLength) {
		badRequest(c, "Company name too long")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), usecases.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Name:        req.Name,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	if req.Email != nil && !ValidEmail(usecases.NormalizeEmail(*req.Email)) {
		badRequest(c, "Invalid email")
		return
	}
	if req.Name != nil {
		req.Name = sanitizePtr(req.Name)
		if !ValidateLength(strings.TrimSpace(*req.Name), 1, MaxNameLength) {
			badRequest(c, "Name must be between 1 and 255 characters")
			return
		}
	}
	if req.Password != nil && !ValidateLength(*req.Password, MinPasswordLength, MaxPasswordLength) {
		badRequest(c, "Password must be at least 8 characters")
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), currentUser(c).ID, usecases.ProfileUpdate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// validateAccount returns a client facing message, empty when the input is acceptable
func validateAccount(email, password, name string) string {
	if !ValidEmail(usecases.NormalizeEmail(email)) {
		return "Invalid email"
	}
	if !ValidateLength(password, MinPasswordLength, MaxPasswordLength) {
		return "Password must be at least 8 characters"
	}
	if !ValidateLength(strings.TrimSpace(name), 1, MaxNameLength) {
		return "Name must be between 1 and 255 characters"
	}
	return ""
}
