package usecases

import (
	"context"
	"fmt"
	"strings"

	"chatdesk/internal/entities"
	"chatdesk/internal/interfaces"

	"github.com/google/uuid"
)

type ChatServiceStore interface {
	interfaces.ChatStore
	interfaces.MessageStore
}

// ChatService is chat CRUD scoped to the owning user.
type ChatService struct {
	store ChatServiceStore
	guard *AccessGuard
}

func NewChatService(store ChatServiceStore, guard *AccessGuard) *ChatService {
	return &ChatService{store: store, guard: guard}
}

type ChatInput struct {
	Name                string
	ClientDescription   *string
	SpecialInstructions *string
}

func (s *ChatService) Create(ctx context.Context, user *entities.User, in ChatInput) (*entities.Chat, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: chat name is required", entities.ErrValidation)
	}
	chat := &entities.Chat{
		Name:                name,
		ClientDescription:   in.ClientDescription,
		SpecialInstructions: in.SpecialInstructions,
		UserID:              user.ID,
		CompanyID:           user.CompanyID,
	}
	if err := s.store.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return chat, nil
}

func (s *ChatService) List(ctx context.Context, user *entities.User, page entities.PageRequest) (entities.Page[entities.Chat], error) {
	return s.store.ListChatsByUser(ctx, user.ID, page)
}

func (s *ChatService) Get(ctx context.Context, user *entities.User, chatID uuid.UUID) (*entities.Chat, error) {
	return s.guard.AuthorizeChat(ctx, user, chatID)
}

func (s *ChatService) GetWithMessages(ctx context.Context, user *entities.User, chatID uuid.UUID) (*entities.ChatWithMessages, error) {
	chat, err := s.guard.AuthorizeChat(ctx, user, chatID)
	if err != nil {
		return nil, err
	}
	messages, err := s.store.ListMessages(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return &entities.ChatWithMessages{Chat: *chat, Messages: messages}, nil
}

func (s *ChatService) Update(ctx context.Context, user *entities.User, chatID uuid.UUID, patch entities.ChatPatch) (*entities.Chat, error) {
	if _, err := s.guard.AuthorizeChat(ctx, user, chatID); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: chat name cannot be empty", entities.ErrValidation)
		}
		patch.Name = &name
	}
	chat, err := s.store.UpdateChat(ctx, chatID, patch)
	if err != nil {
		return nil, fmt.Errorf("update chat: %w", err)
	}
	if chat == nil {
		return nil, fmt.Errorf("chat: %w", entities.ErrNotFound)
	}
	return chat, nil
}

func (s *ChatService) Delete(ctx context.Context, user *entities.User, chatID uuid.UUID) error {
	if _, err := s.guard.AuthorizeChat(ctx, user, chatID); err != nil {
		return err
	}
	if _, err := s.store.DeleteChat(ctx, chatID); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

func (s *ChatService) Messages(ctx context.Context, user *entities.User, chatID uuid.UUID, page entities.PageRequest) (entities.Page[entities.Message], error) {
	if _, err := s.guard.AuthorizeChat(ctx, user, chatID); err != nil {
		return entities.Page[entities.Message]{}, err
	}
	return s.store.PageMessages(ctx, chatID, page)
}
