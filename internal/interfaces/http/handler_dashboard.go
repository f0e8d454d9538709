package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// GetUsage returns daily AI usage for the caller's company, ?days defaults to 30
func (h *Handler) GetUsage(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 {
		badRequest(c, "Invalid days")
		return
	}

	user := currentUser(c)
	usage, err := h.dashboard.Usage(c.Request.Context(), user.CompanyID, days)
	if err != nil {
		respondError(c, err)
		return
	}

	var generations, revisions, failures, tokens int
	for _, d := range usage {
		generations += d.Generations
		revisions += d.Revisions
		failures += d.Failures
		tokens += d.PromptTokens + d.CompletionTokens
	}

	c.JSON(http.StatusOK, gin.H{
		"company_id":   user.CompanyID,
		"days":         usage,
		"generations":  generations,
		"revisions":    revisions,
		"failures":     failures,
		"total_tokens": tokens,
	})
}
