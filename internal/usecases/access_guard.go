package usecases

import (
	"context"
	"fmt"

	"chatdesk/internal/entities"
	"chatdesk/internal/interfaces"

	"github.com/google/uuid"
)

// AccessGuard decides whether a user may touch a chat or message.
// Existence is checked before ownership, so a missing record is ErrNotFound
// even for a caller who would not own it.
type AccessGuard struct {
	chats    interfaces.ChatStore
	messages interfaces.MessageStore
}

func NewAccessGuard(chats interfaces.ChatStore, messages interfaces.MessageStore) *AccessGuard {
	return &AccessGuard{chats: chats, messages: messages}
}

func (g *AccessGuard) AuthorizeChat(ctx context.Context, user *entities.User, chatID uuid.UUID) (*entities.Chat, error) {
	chat, err := g.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("lookup chat: %w", err)
	}
	if chat == nil {
		return nil, fmt.Errorf("chat: %w", entities.ErrNotFound)
	}
	if user == nil || chat.UserID != user.ID {
		return nil, entities.ErrForbidden
	}
	return chat, nil
}

func (g *AccessGuard) AuthorizeMessage(ctx context.Context, user *entities.User, messageID uuid.UUID) (*entities.Message, *entities.Chat, error) {
	msg, err := g.messages.GetMessage(ctx, messageID)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup message: %w", err)
	}
	if msg == nil {
		return nil, nil, fmt.Errorf("message: %w", entities.ErrNotFound)
	}
	chat, err := g.AuthorizeChat(ctx, user, msg.ChatID)
	if err != nil {
		return nil, nil, err
	}
	return msg, chat, nil
}
