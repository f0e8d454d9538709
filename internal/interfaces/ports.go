package interfaces

import (
	"context"
	"time"

	"chatdesk/internal/entities"

	"github.com/google/uuid"
)

// AIClient is the language model integration. Implementations make exactly one upstream call.
type AIClient interface {
	Complete(ctx context.Context, turns []entities.Turn) (*entities.Completion, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// Store lookups return (nil, nil) when the record does not exist.

type CompanyStore interface {
	CreateCompany(ctx context.Context, c *entities.Company) error
	GetCompany(ctx context.Context, id uuid.UUID) (*entities.Company, error)
	ListCompanies(ctx context.Context) ([]entities.Company, error)
	RenameCompany(ctx context.Context, id uuid.UUID, name string) (*entities.Company, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) (bool, error)
	GetStats(ctx context.Context) (*entities.CompanyStats, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, u *entities.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	ListUsers(ctx context.Context, companyID *uuid.UUID) ([]entities.User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, patch entities.UserPatch) (*entities.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (bool, error)
}

type ChatStore interface {
	CreateChat(ctx context.Context, c *entities.Chat) error
	GetChat(ctx context.Context, id uuid.UUID) (*entities.Chat, error)
	ListChatsByUser(ctx context.Context, userID uuid.UUID, page entities.PageRequest) (entities.Page[entities.Chat], error)
	UpdateChat(ctx context.Context, id uuid.UUID, patch entities.ChatPatch) (*entities.Chat, error)
	DeleteChat(ctx context.Context, id uuid.UUID) (bool, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, m *entities.Message) error
	GetMessage(ctx context.Context, id uuid.UUID) (*entities.Message, error)
	// ListMessages returns every message of the chat in conversation order.
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]entities.Message, error)
	// RecentMessages returns the last limit messages of the chat in conversation order.
	RecentMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]entities.Message, error)
	PageMessages(ctx context.Context, chatID uuid.UUID, page entities.PageRequest) (entities.Page[entities.Message], error)
	UpdateMessageContent(ctx context.Context, id uuid.UUID, content string) (*entities.Message, error)
	DeleteMessage(ctx context.Context, id uuid.UUID) (bool, error)
}

type AIConfigStore interface {
	// GetAIConfig finds the row for (companyID, chatID); a nil chatID selects the global row.
	GetAIConfig(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID) (*entities.AIConfiguration, error)
	// InsertAIConfig fails with entities.ErrConflict when the key is taken.
	InsertAIConfig(ctx context.Context, c *entities.AIConfiguration) error
	// UpsertAIConfig atomically creates the row or patches the supplied fields.
	UpsertAIConfig(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID, patch entities.AIConfigPatch) (*entities.AIConfiguration, error)
	DeleteAIConfig(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID) (bool, error)
}

type UsageStore interface {
	RecordUsage(ctx context.Context, ev entities.UsageEvent) error
	UsageHistory(ctx context.Context, companyID uuid.UUID, since time.Time) ([]entities.DailyUsage, error)
}

// Store bundles every record store the services need.
type Store interface {
	CompanyStore
	UserStore
	ChatStore
	MessageStore
	AIConfigStore
	UsageStore
	Close()
}
