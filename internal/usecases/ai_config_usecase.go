package usecases

import (
	"context"
	"fmt"
	"strings"

	"chatdesk/internal/entities"
	"chatdesk/internal/interfaces"

	"github.com/google/uuid"
)

const DefaultSystemPrompt = "You are a professional customer service manager. Respond helpfully and professionally to customer inquiries."

// AIConfigUsecase resolves and edits prompt settings. A chat row overrides the
// company's global row, which overrides DefaultSystemPrompt.
type AIConfigUsecase struct {
	store interfaces.AIConfigStore
}

func NewAIConfigUsecase(store interfaces.AIConfigStore) *AIConfigUsecase {
	return &AIConfigUsecase{store: store}
}

func nonBlank(s *string) (string, bool) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "", false
	}
	return *s, true
}

// EffectivePrompt picks the first non-blank special_instructions: chat, then global, then default.
func (uc *AIConfigUsecase) EffectivePrompt(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID) (string, error) {
	if chatID != nil {
		cfg, err := uc.store.GetAIConfig(ctx, companyID, chatID)
		if err != nil {
			return "", fmt.Errorf("load chat config: %w", err)
		}
		if cfg != nil {
			if prompt, ok := nonBlank(cfg.SpecialInstructions); ok {
				return prompt, nil
			}
		}
	}

	global, err := uc.store.GetAIConfig(ctx, companyID, nil)
	if err != nil {
		return "", fmt.Errorf("load global config: %w", err)
	}
	if global != nil {
		if prompt, ok := nonBlank(global.SpecialInstructions); ok {
			return prompt, nil
		}
	}
	return DefaultSystemPrompt, nil
}

// EffectiveConfig returns the chat row when it exists, else the global row, else nil.
func (uc *AIConfigUsecase) EffectiveConfig(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID) (*entities.AIConfiguration, error) {
	if chatID != nil {
		cfg, err := uc.store.GetAIConfig(ctx, companyID, chatID)
		if err != nil || cfg != nil {
			return cfg, err
		}
	}
	return uc.store.GetAIConfig(ctx, companyID, nil)
}

// Create inserts a new row and fails with entities.ErrConflict when one exists for the key.
func (uc *AIConfigUsecase) Create(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID, patch entities.AIConfigPatch) (*entities.AIConfiguration, error) {
	cfg := &entities.AIConfiguration{
		ClientDescription:   patch.ClientDescription,
		SpecialInstructions: patch.SpecialInstructions,
		CompanyID:           companyID,
		ChatID:              chatID,
	}
	if err := uc.store.InsertAIConfig(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (uc *AIConfigUsecase) Get(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID) (*entities.AIConfiguration, error) {
	cfg, err := uc.store.GetAIConfig(ctx, companyID, chatID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("ai configuration: %w", entities.ErrNotFound)
	}
	return cfg, nil
}

func (uc *AIConfigUsecase) UpsertGlobal(ctx context.Context, companyID uuid.UUID, patch entities.AIConfigPatch) (*entities.AIConfiguration, error) {
	return uc.store.UpsertAIConfig(ctx, companyID, nil, patch)
}

func (uc *AIConfigUsecase) UpsertChat(ctx context.Context, companyID, chatID uuid.UUID, patch entities.AIConfigPatch) (*entities.AIConfiguration, error) {
	return uc.store.UpsertAIConfig(ctx, companyID, &chatID, patch)
}

func (uc *AIConfigUsecase) Delete(ctx context.Context, companyID uuid.UUID, chatID *uuid.UUID) error {
	deleted, err := uc.store.DeleteAIConfig(ctx, companyID, chatID)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("ai configuration: %w", entities.ErrNotFound)
	}
	return nil
}
