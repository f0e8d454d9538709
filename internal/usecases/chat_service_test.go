package usecases_test

import (
	"context"
	"fmt"

	"chatdesk/internal/entities"
	"chatdesk/internal/repository/memstore"
	. "chatdesk/internal/usecases"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ChatService and MessageService", func() {
	var (
		ctx      context.Context
		store    *memstore.Store
		chats    *ChatService
		messages *MessageService
		owner    *entities.User
		chat     *entities.Chat
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memstore.New()
		guard := NewAccessGuard(store, store)
		chats = NewChatService(store, guard)
		messages = NewMessageService(store, guard)
		owner, chat = seedOwner(ctx, store, "owner@example.com")
	})

	It("creates chats in the owner's company and lists them newest first", func() {
		second, err := chats.Create(ctx, owner, ChatInput{Name: "  Second  ", ClientDescription: strPtr("B2B")})
		Expect(err).ToNot(HaveOccurred())
		Expect(second.Name).To(Equal("Second"))
		Expect(second.CompanyID).To(Equal(owner.CompanyID))

		page, err := chats.List(ctx, owner, entities.PageRequest{Page: 1, PageSize: 20})
		Expect(err).ToNot(HaveOccurred())
		Expect(page.TotalCount).To(Equal(2))
		Expect(page.Records).To(HaveLen(2))
	})

	It("rejects a blank chat name", func() {
		_, err := chats.Create(ctx, owner, ChatInput{Name: "   "})
		Expect(err).To(MatchError(entities.ErrValidation))
	})

	It("updates only the given fields", func() {
		updated, err := chats.Update(ctx, owner, chat.ID, entities.ChatPatch{SpecialInstructions: strPtr("formal")})
		Expect(err).ToNot(HaveOccurred())
		Expect(updated.Name).To(Equal(chat.Name))
		Expect(*updated.SpecialInstructions).To(Equal("formal"))
	})

	It("returns a chat with its messages in order and deletes it with them", func() {
		for i := 0; i < 3; i++ {
			_, err := messages.Create(ctx, owner, chat.ID, MessageInput{Content: fmt.Sprintf("m%d", i), Role: entities.RoleClient})
			Expect(err).ToNot(HaveOccurred())
		}

		full, err := chats.GetWithMessages(ctx, owner, chat.ID)
		Expect(err).ToNot(HaveOccurred())
		Expect(full.Messages).To(HaveLen(3))
		Expect(full.Messages[2].Content).To(Equal("m2"))

		Expect(chats.Delete(ctx, owner, chat.ID)).To(Succeed())
		_, err = chats.Get(ctx, owner, chat.ID)
		Expect(err).To(MatchError(entities.ErrNotFound))
	})

	It("validates message role and content", func() {
		_, err := messages.Create(ctx, owner, chat.ID, MessageInput{Content: "x", Role: "assistant"})
		Expect(err).To(MatchError(entities.ErrValidation))
		_, err = messages.Create(ctx, owner, chat.ID, MessageInput{Content: "  ", Role: entities.RoleClient})
		Expect(err).To(MatchError(entities.ErrValidation))
	})

	It("imports valid entries and skips the rest", func() {
		result, err := messages.Import(ctx, owner, chat.ID, []MessageInput{
			{Content: "Hello", Role: entities.RoleClient},
			{Content: "", Role: entities.RoleClient},
			{Content: "Hi! How can I help?", Role: entities.RoleManager, IsAIGenerated: true},
			{Content: "bogus", Role: "system"},
		})
		Expect(err).ToNot(HaveOccurred())
		Expect(result.Imported).To(HaveLen(2))
		Expect(result.Skipped).To(Equal(2))
		Expect(result.Imported[1].IsAIGenerated).To(BeTrue())

		all, _ := store.ListMessages(ctx, chat.ID)
		Expect(all).To(HaveLen(2))
	})

	It("edits and deletes a message", func() {
		msg, err := messages.Create(ctx, owner, chat.ID, MessageInput{Content: "draft", Role: entities.RoleManager})
		Expect(err).ToNot(HaveOccurred())

		edited, err := messages.UpdateContent(ctx, owner, msg.ID, "final")
		Expect(err).ToNot(HaveOccurred())
		Expect(edited.Content).To(Equal("final"))

		Expect(messages.Delete(ctx, owner, msg.ID)).To(Succeed())
		_, err = messages.Get(ctx, owner, msg.ID)
		Expect(err).To(MatchError(entities.ErrNotFound))
	})
})
