package http

import (
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"chatdesk/internal/entities"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Input validation constants
const (
	MaxNameLength         = 255
	MaxEmailLength        = 255
	MinPasswordLength     = 8
	MaxPasswordLength     = 256
	MaxContentLength      = 50000
	MaxInstructionsLength = 50000 // For AI prompts
	MaxImportBatch        = 1000
	MaxPageSize           = 100
)

// ValidEmail checks that s is a bare address, without display name
func ValidEmail(s string) bool {
	if s == "" || len(s) > MaxEmailLength {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// SanitizeString removes null bytes and invalid UTF-8
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return s
}

func sanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := SanitizeString(*s)
	return &v
}

// ValidateLength checks if string is within bounds, counted in characters
func ValidateLength(s string, min, max int) bool {
	l := utf8.RuneCountInString(s)
	return l >= min && l <= max
}

func validOptional(s *string, max int) bool {
	return s == nil || ValidateLength(*s, 0, max)
}

// pageParams reads ?page and ?page_size, 1-based, page_size clamped to MaxPageSize
func pageParams(c *gin.Context, defaultSize int) entities.PageRequest {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.Query("page_size"))
	if err != nil || size < 1 {
		size = defaultSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return entities.PageRequest{Page: page, PageSize: size}
}

// uuidParam parses a path parameter, answering 400 when it is malformed
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "Invalid "+strings.ReplaceAll(name, "_", " "))
		return uuid.Nil, false
	}
	return id, true
}
