package usecases

import (
	"context"
	"fmt"
	"strings"

	"chatdesk/internal/entities"
	"chatdesk/internal/interfaces"

	"github.com/google/uuid"
)

// MessageService stores client and manager messages typed or imported by a manager.
type MessageService struct {
	store interfaces.MessageStore
	guard *AccessGuard
}

func NewMessageService(store interfaces.MessageStore, guard *AccessGuard) *MessageService {
	return &MessageService{store: store, guard: guard}
}

type MessageInput struct {
	Content       string
	Role          entities.MessageRole
	IsAIGenerated bool
}

func (in MessageInput) validate() error {
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: message content is required", entities.ErrValidation)
	}
	if !in.Role.Valid() {
		return fmt.Errorf("%w: role must be client or manager", entities.ErrValidation)
	}
	return nil
}

func (s *MessageService) Create(ctx context.Context, user *entities.User, chatID uuid.UUID, in MessageInput) (*entities.Message, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := s.guard.AuthorizeChat(ctx, user, chatID); err != nil {
		return nil, err
	}
	msg := &entities.Message{
		Content:       in.Content,
		Role:          in.Role,
		IsAIGenerated: in.IsAIGenerated,
		ChatID:        chatID,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}

func (s *MessageService) Get(ctx context.Context, user *entities.User, messageID uuid.UUID) (*entities.Message, error) {
	msg, _, err := s.guard.AuthorizeMessage(ctx, user, messageID)
	return msg, err
}

func (s *MessageService) UpdateContent(ctx context.Context, user *entities.User, messageID uuid.UUID, content string) (*entities.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content is required", entities.ErrValidation)
	}
	if _, _, err := s.guard.AuthorizeMessage(ctx, user, messageID); err != nil {
		return nil, err
	}
	msg, err := s.store.UpdateMessageContent(ctx, messageID, content)
	if err != nil {
		return nil, fmt.Errorf("update message: %w", err)
	}
	if msg == nil {
		return nil, fmt.Errorf("message: %w", entities.ErrNotFound)
	}
	return msg, nil
}

func (s *MessageService) Delete(ctx context.Context, user *entities.User, messageID uuid.UUID) error {
	if _, _, err := s.guard.AuthorizeMessage(ctx, user, messageID); err != nil {
		return err
	}
	if _, err := s.store.DeleteMessage(ctx, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

type ImportResult struct {
	Imported []entities.Message `json:"messages"`
	Skipped  int                `json:"skipped"`
}

// Import appends a batch of messages in order. Entries with empty content or an
// unknown role are skipped, not rejected.
func (s *MessageService) Import(ctx context.Context, user *entities.User, chatID uuid.UUID, entries []MessageInput) (*ImportResult, error) {
	if _, err := s.guard.AuthorizeChat(ctx, user, chatID); err != nil {
		return nil, err
	}

	result := &ImportResult{Imported: []entities.Message{}}
	for _, in := range entries {
		if in.validate() != nil {
			result.Skipped++
			continue
		}
		msg := &entities.Message{
			Content:       in.Content,
			Role:          in.Role,
			IsAIGenerated: in.IsAIGenerated,
			ChatID:        chatID,
		}
		if err := s.store.CreateMessage(ctx, msg); err != nil {
			return nil, fmt.Errorf("import message: %w", err)
		}
		result.Imported = append(result.Imported, *msg)
	}
	return result, nil
}
