package usecases

import (
	"context"
	"fmt"
	"strings"

	"chatdesk/internal/entities"
	"chatdesk/internal/interfaces"

	"github.com/google/uuid"
)

// ContextAssembler turns stored conversation history into model turns.
type ContextAssembler struct {
	messages      interfaces.MessageStore
	configs       *AIConfigUsecase
	defaultWindow int
	maxWindow     int
}

func NewContextAssembler(messages interfaces.MessageStore, configs *AIConfigUsecase, defaultWindow, maxWindow int) *ContextAssembler {
	return &ContextAssembler{
		messages:      messages,
		configs:       configs,
		defaultWindow: defaultWindow,
		maxWindow:     maxWindow,
	}
}

// Window normalises a requested context size: <= 0 is the default, anything above the maximum is clamped.
func (a *ContextAssembler) Window(requested int) int {
	if requested <= 0 {
		return a.defaultWindow
	}
	if requested > a.maxWindow {
		return a.maxWindow
	}
	return requested
}

func turnRole(role entities.MessageRole) string {
	if role == entities.RoleManager {
		return entities.TurnAssistant
	}
	return entities.TurnUser
}

// BuildContext returns the last window messages oldest first, client as user and manager as assistant.
func (a *ContextAssembler) BuildContext(ctx context.Context, chatID uuid.UUID, window int) ([]entities.Turn, error) {
	history, err := a.messages.RecentMessages(ctx, chatID, a.Window(window))
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	turns := make([]entities.Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, entities.Turn{Role: turnRole(m.Role), Content: m.Content})
	}
	return turns, nil
}

// BuildPrompt is the system turn followed by the conversation context.
func (a *ContextAssembler) BuildPrompt(ctx context.Context, chat *entities.Chat, window int) ([]entities.Turn, error) {
	prompt, err := a.configs.EffectivePrompt(ctx, chat.CompanyID, &chat.ID)
	if err != nil {
		return nil, err
	}
	cfg, err := a.configs.EffectiveConfig(ctx, chat.CompanyID, &chat.ID)
	if err != nil {
		return nil, fmt.Errorf("load ai config: %w", err)
	}
	if cfg != nil {
		if desc, ok := nonBlank(cfg.ClientDescription); ok {
			prompt += "\n\nClient Description: " + desc
		}
	}

	history, err := a.BuildContext(ctx, chat.ID, window)
	if err != nil {
		return nil, err
	}

	turns := make([]entities.Turn, 0, len(history)+1)
	turns = append(turns, entities.Turn{Role: entities.TurnSystem, Content: prompt})
	return append(turns, history...), nil
}

// RevisionPrompt is the one-shot instruction used to rewrite an existing message.
func RevisionPrompt(content, instructions string) []entities.Turn {
	var sb strings.Builder
	sb.WriteString("You are helping revise a customer service message. \n\n")
	sb.WriteString("Original message: " + content + "\n\n")
	sb.WriteString("Revision instructions: " + instructions + "\n\n")
	sb.WriteString("Please provide a revised version of the message that incorporates the requested changes while maintaining professionalism.")
	return []entities.Turn{{Role: entities.TurnSystem, Content: sb.String()}}
}
