package entities

import (
	"time"

	"github.com/google/uuid"
)

type MessageRole string

const (
	RoleClient  MessageRole = "client"
	RoleManager MessageRole = "manager"
)

func (r MessageRole) Valid() bool {
	return r == RoleClient || r == RoleManager
}

type Chat struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	ClientDescription   *string   `json:"client_description"`
	SpecialInstructions *string   `json:"special_instructions"`
	UserID              uuid.UUID `json:"user_id"`
	CompanyID           uuid.UUID `json:"company_id"` // Copied from the owner at creation
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type ChatPatch struct {
	Name                *string
	ClientDescription   *string
	SpecialInstructions *string
}

type Message struct {
	ID            uuid.UUID   `json:"id"`
	Content       string      `json:"content"`
	Role          MessageRole `json:"role"`
	IsAIGenerated bool        `json:"is_ai_generated"`
	ChatID        uuid.UUID   `json:"chat_id"`
	Seq           int64       `json:"-"` // Insertion order, breaks created_at ties
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// ChatWithMessages is a chat with its whole conversation prefetched.
type ChatWithMessages struct {
	Chat
	Messages []Message `json:"messages"`
}

// Turn roles understood by the language model.
const (
	TurnSystem    = "system"
	TurnUser      = "user"
	TurnAssistant = "assistant"
)

// Turn is one entry of the conversation sent to the language model.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completion is the language model answer plus the token accounting reported by the provider.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}
