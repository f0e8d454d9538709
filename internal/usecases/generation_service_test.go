package usecases_test

import (
	"context"
	"errors"
	"time"

	"chatdesk/internal/entities"
	"chatdesk/internal/metrics"
	"chatdesk/internal/repository/memstore"
	. "chatdesk/internal/usecases"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// aiCalls reads ai_calls_total{operation, outcome} from the registry.
func aiCalls(m *metrics.Metrics, operation, outcome string) float64 {
	families, err := m.Registry().Gather()
	Expect(err).ToNot(HaveOccurred())
	for _, family := range families {
		if family.GetName() != "ai_calls_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, pair := range metric.GetLabel() {
				labels[pair.GetName()] = pair.GetValue()
			}
			if labels["operation"] == operation && labels["outcome"] == outcome {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

var _ = Describe("GenerationService", func() {
	var (
		ctx     context.Context
		store   *memstore.Store
		ai      *fakeAI
		m       *metrics.Metrics
		service *GenerationService
		chat    *entities.Chat
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memstore.New()
		ai = &fakeAI{respond: replyWith("  Thanks for reaching out!  ")}
		m = metrics.New("test")
		configs := NewAIConfigUsecase(store)
		assembler := NewContextAssembler(store, configs, 10, 100)
		service = NewGenerationService(store, assembler, ai, m, 200*time.Millisecond)
		_, chat = seedOwner(ctx, store, "owner@example.com")
		addMessage(ctx, store, chat.ID, entities.RoleClient, "Do you ship abroad?")
	})

	usageToday := func() []entities.DailyUsage {
		history, err := store.UsageHistory(ctx, chat.CompanyID, time.Now().AddDate(0, 0, -1))
		Expect(err).ToNot(HaveOccurred())
		return history
	}

	Describe("GenerateReply", func() {
		It("persists one AI manager message with the trimmed completion", func() {
			msg, err := service.GenerateReply(ctx, chat.ID, 0)
			Expect(err).ToNot(HaveOccurred())
			Expect(msg.Role).To(Equal(entities.RoleManager))
			Expect(msg.IsAIGenerated).To(BeTrue())
			Expect(msg.Content).To(Equal("Thanks for reaching out!"))

			all, _ := store.ListMessages(ctx, chat.ID)
			Expect(all).To(HaveLen(2))
			Expect(all[1].ID).To(Equal(msg.ID))

			Expect(ai.Calls()).To(HaveLen(1))
			Expect(ai.Calls()[0][0].Content).To(Equal(DefaultSystemPrompt))
			Expect(ai.Calls()[0][1]).To(Equal(entities.Turn{Role: entities.TurnUser, Content: "Do you ship abroad?"}))

			usage := usageToday()
			Expect(usage).To(HaveLen(1))
			Expect(usage[0].Generations).To(Equal(1))
			Expect(usage[0].PromptTokens).To(Equal(20))
			Expect(aiCalls(m, "generation", "success")).To(Equal(1.0))
		})

		It("persists nothing when the model call fails", func() {
			ai.respond = func(context.Context, []entities.Turn) (*entities.Completion, error) {
				return nil, errors.New("upstream exploded")
			}

			_, err := service.GenerateReply(ctx, chat.ID, 0)
			Expect(err).To(MatchError(entities.ErrGenerationFailed))

			all, _ := store.ListMessages(ctx, chat.ID)
			Expect(all).To(HaveLen(1))
			Expect(usageToday()[0].Failures).To(Equal(1))
			Expect(aiCalls(m, "generation", "failure")).To(Equal(1.0))
		})

		It("treats a blank completion as a failure", func() {
			ai.respond = replyWith(" \n\t ")
			_, err := service.GenerateReply(ctx, chat.ID, 0)
			Expect(err).To(MatchError(entities.ErrGenerationFailed))

			all, _ := store.ListMessages(ctx, chat.ID)
			Expect(all).To(HaveLen(1))
		})

		It("gives up when the model exceeds the timeout", func() {
			ai.respond = func(ctx context.Context, _ []entities.Turn) (*entities.Completion, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			}
			_, err := service.GenerateReply(ctx, chat.ID, 0)
			Expect(err).To(MatchError(entities.ErrGenerationFailed))
		})

		It("reports a missing chat without calling the model", func() {
			_, err := service.GenerateReply(ctx, uuid.New(), 0)
			Expect(err).To(MatchError(entities.ErrNotFound))
			Expect(ai.Calls()).To(BeEmpty())
		})
	})

	Describe("ReviseReply", func() {
		It("rewrites the content in place and keeps role and flag", func() {
			original := addMessage(ctx, store, chat.ID, entities.RoleManager, "yes we do")
			ai.respond = replyWith("Yes, we ship worldwide.")

			revised, err := service.ReviseReply(ctx, original.ID, "Make it formal")
			Expect(err).ToNot(HaveOccurred())
			Expect(revised.ID).To(Equal(original.ID))
			Expect(revised.Content).To(Equal("Yes, we ship worldwide."))
			Expect(revised.Role).To(Equal(entities.RoleManager))
			Expect(revised.IsAIGenerated).To(BeFalse())

			prompt := ai.Calls()[0]
			Expect(prompt).To(HaveLen(1))
			Expect(prompt[0].Content).To(ContainSubstring("Original message: yes we do"))
			Expect(prompt[0].Content).To(ContainSubstring("Revision instructions: Make it formal"))
			Expect(usageToday()[0].Revisions).To(Equal(1))
		})

		It("leaves the message untouched on failure", func() {
			original := addMessage(ctx, store, chat.ID, entities.RoleManager, "yes we do")
			ai.respond = func(context.Context, []entities.Turn) (*entities.Completion, error) {
				return nil, errors.New("rate limited")
			}

			_, err := service.ReviseReply(ctx, original.ID, "Make it formal")
			Expect(err).To(MatchError(entities.ErrGenerationFailed))
			stored, _ := store.GetMessage(ctx, original.ID)
			Expect(stored.Content).To(Equal("yes we do"))
		})

		It("reports a missing message", func() {
			_, err := service.ReviseReply(ctx, uuid.New(), "anything")
			Expect(err).To(MatchError(entities.ErrNotFound))
		})
	})
})
