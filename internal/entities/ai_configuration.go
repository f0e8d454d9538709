package entities

import (
	"time"

	"github.com/google/uuid"
)

// AIConfiguration holds the prompt settings for a company (ChatID nil, the global row)
// or for a single chat.
type AIConfiguration struct {
	ID                  uuid.UUID  `json:"id"`
	ClientDescription   *string    `json:"client_description"`
	SpecialInstructions *string    `json:"special_instructions"`
	CompanyID           uuid.UUID  `json:"company_id"`
	ChatID              *uuid.UUID `json:"chat_id"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func (c *AIConfiguration) IsGlobal() bool {
	return c.ChatID == nil
}

// AIConfigPatch is a partial update: nil leaves the stored value as is,
// a non-nil pointer (even to "") overwrites it.
type AIConfigPatch struct {
	ClientDescription   *string `json:"client_description"`
	SpecialInstructions *string `json:"special_instructions"`
}

// DailyUsage aggregates language model activity for one company and day.
type DailyUsage struct {
	Date             time.Time `json:"date"`
	Generations      int       `json:"generations"`
	Revisions        int       `json:"revisions"`
	Failures         int       `json:"failures"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
}

// UsageEvent is what a single model call contributes to DailyUsage.
type UsageEvent struct {
	CompanyID        uuid.UUID
	Kind             string // "generation" or "revision"
	Failed           bool
	PromptTokens     int
	CompletionTokens int
	At               time.Time
}
