package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chatdesk/internal/entities"
	"chatdesk/internal/interfaces"
	"chatdesk/internal/logger"
	"chatdesk/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	usageGeneration = "generation"
	usageRevision   = "revision"
)

type GenerationStore interface {
	interfaces.ChatStore
	interfaces.MessageStore
	interfaces.UsageStore
}

// GenerationService drafts and revises manager replies. Each call makes at most
// one model request and persists nothing when that request fails.
type GenerationService struct {
	store     GenerationStore
	assembler *ContextAssembler
	ai        interfaces.AIClient
	metrics   *metrics.Metrics
	timeout   time.Duration
	now       func() time.Time
}

func NewGenerationService(store GenerationStore, assembler *ContextAssembler, ai interfaces.AIClient, m *metrics.Metrics, timeout time.Duration) *GenerationService {
	return &GenerationService{
		store:     store,
		assembler: assembler,
		ai:        ai,
		metrics:   m,
		timeout:   timeout,
		now:       time.Now,
	}
}

func (s *GenerationService) complete(ctx context.Context, companyID uuid.UUID, kind string, turns []entities.Turn) (string, error) {
	log := logger.FromContext(ctx)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.now()
	completion, err := s.ai.Complete(callCtx, turns)
	took := s.now().Sub(start)

	var text string
	if err == nil {
		text = strings.TrimSpace(completion.Text)
		if text == "" {
			err = fmt.Errorf("empty completion")
		}
	}

	event := entities.UsageEvent{CompanyID: companyID, Kind: kind, At: s.now(), Failed: err != nil}
	if completion != nil {
		event.PromptTokens = completion.PromptTokens
		event.CompletionTokens = completion.CompletionTokens
	}
	s.recordUsage(ctx, event, took)

	if err != nil {
		log.Error("language model call failed",
			zap.String("operation", kind),
			zap.String("company_id", companyID.String()),
			zap.Duration("took", took),
			zap.Error(err))
		return "", fmt.Errorf("%w: %v", entities.ErrGenerationFailed, err)
	}
	log.Debug("language model call",
		zap.String("operation", kind),
		zap.String("model", completion.Model),
		zap.Int("prompt_tokens", completion.PromptTokens),
		zap.Int("completion_tokens", completion.CompletionTokens),
		zap.Duration("took", took))
	return text, nil
}

// recordUsage never fails the request; problems are only logged.
func (s *GenerationService) recordUsage(ctx context.Context, ev entities.UsageEvent, took time.Duration) {
	if s.metrics != nil {
		outcome := "success"
		if ev.Failed {
			outcome = "failure"
		}
		s.metrics.ObserveAICall(ev.Kind, outcome, took, ev.PromptTokens, ev.CompletionTokens)
	}
	if err := s.store.RecordUsage(ctx, ev); err != nil {
		logger.FromContext(ctx).Warn("failed to record ai usage",
			zap.String("company_id", ev.CompanyID.String()), zap.Error(err))
	}
}

// GenerateReply drafts the next manager message from the last window messages.
func (s *GenerationService) GenerateReply(ctx context.Context, chatID uuid.UUID, window int) (*entities.Message, error) {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("lookup chat: %w", err)
	}
	if chat == nil {
		return nil, fmt.Errorf("chat: %w", entities.ErrNotFound)
	}

	turns, err := s.assembler.BuildPrompt(ctx, chat, window)
	if err != nil {
		return nil, err
	}

	text, err := s.complete(ctx, chat.CompanyID, usageGeneration, turns)
	if err != nil {
		return nil, err
	}

	msg := &entities.Message{
		Content:       text,
		Role:          entities.RoleManager,
		IsAIGenerated: true,
		ChatID:        chat.ID,
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("save reply: %w", err)
	}
	return msg, nil
}

// ReviseReply rewrites a message in place following the instructions. Role and AI flag are kept.
func (s *GenerationService) ReviseReply(ctx context.Context, messageID uuid.UUID, instructions string) (*entities.Message, error) {
	msg, err := s.store.GetMessage(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("lookup message: %w", err)
	}
	if msg == nil {
		return nil, fmt.Errorf("message: %w", entities.ErrNotFound)
	}
	chat, err := s.store.GetChat(ctx, msg.ChatID)
	if err != nil {
		return nil, fmt.Errorf("lookup chat: %w", err)
	}
	if chat == nil {
		return nil, fmt.Errorf("chat: %w", entities.ErrNotFound)
	}

	text, err := s.complete(ctx, chat.CompanyID, usageRevision, RevisionPrompt(msg.Content, instructions))
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateMessageContent(ctx, msg.ID, text)
	if err != nil {
		return nil, fmt.Errorf("save revision: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("message: %w", entities.ErrNotFound)
	}
	return updated, nil
}
