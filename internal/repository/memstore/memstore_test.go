package memstore_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chatdesk/internal/entities"
	"chatdesk/internal/interfaces"
	. "chatdesk/internal/repository/memstore"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ interfaces.Store = (*Store)(nil)

func strPtr(s string) *string { return &s }

var _ = Describe("Store", func() {
	var (
		ctx     context.Context
		store   *Store
		company *entities.Company
		user    *entities.User
		chat    *entities.Chat
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = New()

		company = &entities.Company{Name: "Acme"}
		Expect(store.CreateCompany(ctx, company)).To(Succeed())
		user = &entities.User{Email: "a@acme.test", Name: "A", CompanyID: company.ID, IsActive: true}
		Expect(store.CreateUser(ctx, user)).To(Succeed())
		chat = &entities.Chat{Name: "Support", UserID: user.ID, CompanyID: company.ID}
		Expect(store.CreateChat(ctx, chat)).To(Succeed())
	})

	Describe("users", func() {
		It("rejects a duplicate email", func() {
			dup := &entities.User{Email: "A@acme.test", CompanyID: company.ID}
			Expect(store.CreateUser(ctx, dup)).To(MatchError(entities.ErrConflict))
		})

		It("returns nil for unknown records", func() {
			u, err := store.GetUser(ctx, uuid.New())
			Expect(err).ToNot(HaveOccurred())
			Expect(u).To(BeNil())
		})

		It("applies only the patched fields", func() {
			active := false
			updated, err := store.UpdateUser(ctx, user.ID, entities.UserPatch{IsActive: &active})
			Expect(err).ToNot(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
			Expect(updated.Name).To(Equal("A"))
		})
	})

	Describe("messages", func() {
		It("keeps insertion order and windows the tail", func() {
			for i := 0; i < 15; i++ {
				m := &entities.Message{Content: fmt.Sprintf("m%d", i), Role: entities.RoleClient, ChatID: chat.ID}
				Expect(store.CreateMessage(ctx, m)).To(Succeed())
			}

			recent, err := store.RecentMessages(ctx, chat.ID, 10)
			Expect(err).ToNot(HaveOccurred())
			Expect(recent).To(HaveLen(10))
			Expect(recent[0].Content).To(Equal("m5"))
			Expect(recent[9].Content).To(Equal("m14"))

			page, err := store.PageMessages(ctx, chat.ID, entities.PageRequest{Page: 2, PageSize: 10})
			Expect(err).ToNot(HaveOccurred())
			Expect(page.TotalCount).To(Equal(15))
			Expect(page.TotalPages).To(Equal(2))
			Expect(page.Records).To(HaveLen(5))
			Expect(page.Records[0].Content).To(Equal("m10"))
		})

		It("refuses messages for a missing chat", func() {
			m := &entities.Message{Content: "x", Role: entities.RoleClient, ChatID: uuid.New()}
			Expect(store.CreateMessage(ctx, m)).To(MatchError(entities.ErrNotFound))
		})
	})

	Describe("ai configurations", func() {
		It("keeps one row per key under concurrent upserts", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := store.UpsertAIConfig(ctx, company.ID, nil, entities.AIConfigPatch{
						SpecialInstructions: strPtr(fmt.Sprintf("v%d", i)),
					})
					Expect(err).ToNot(HaveOccurred())
				}(i)
			}
			wg.Wait()
			Expect(store.CountAIConfigs(company.ID, nil)).To(Equal(1))
		})

		It("keeps unpatched fields and overwrites present ones", func() {
			_, err := store.UpsertAIConfig(ctx, company.ID, &chat.ID, entities.AIConfigPatch{
				ClientDescription:   strPtr("VIP"),
				SpecialInstructions: strPtr("be brief"),
			})
			Expect(err).ToNot(HaveOccurred())

			cfg, err := store.UpsertAIConfig(ctx, company.ID, &chat.ID, entities.AIConfigPatch{SpecialInstructions: strPtr("")})
			Expect(err).ToNot(HaveOccurred())
			Expect(*cfg.ClientDescription).To(Equal("VIP"))
			Expect(*cfg.SpecialInstructions).To(BeEmpty())
		})

		It("treats the global row and chat rows as separate keys", func() {
			Expect(store.InsertAIConfig(ctx, &entities.AIConfiguration{CompanyID: company.ID})).To(Succeed())
			Expect(store.InsertAIConfig(ctx, &entities.AIConfiguration{CompanyID: company.ID, ChatID: &chat.ID})).To(Succeed())
			Expect(store.InsertAIConfig(ctx, &entities.AIConfiguration{CompanyID: company.ID})).To(MatchError(entities.ErrConflict))
		})
	})

	Describe("deletes", func() {
		It("cascades from a user to chats, messages and chat configs", func() {
			m := &entities.Message{Content: "hello", Role: entities.RoleClient, ChatID: chat.ID}
			Expect(store.CreateMessage(ctx, m)).To(Succeed())
			_, err := store.UpsertAIConfig(ctx, company.ID, &chat.ID, entities.AIConfigPatch{})
			Expect(err).ToNot(HaveOccurred())

			deleted, err := store.DeleteUser(ctx, user.ID)
			Expect(err).ToNot(HaveOccurred())
			Expect(deleted).To(BeTrue())

			Expect(store.GetChat(ctx, chat.ID)).To(BeNil())
			Expect(store.GetMessage(ctx, m.ID)).To(BeNil())
			Expect(store.CountAIConfigs(company.ID, &chat.ID)).To(BeZero())

			stats, err := store.GetStats(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(stats.TotalUsers).To(BeZero())
			Expect(stats.TotalCompanies).To(Equal(1))
		})
	})

	Describe("usage", func() {
		It("aggregates events per day", func() {
			now := time.Now().UTC()
			events := []entities.UsageEvent{
				{CompanyID: company.ID, Kind: "generation", PromptTokens: 10, CompletionTokens: 5, At: now},
				{CompanyID: company.ID, Kind: "revision", PromptTokens: 3, CompletionTokens: 2, At: now},
				{CompanyID: company.ID, Kind: "generation", Failed: true, At: now},
				{CompanyID: company.ID, Kind: "generation", At: now.AddDate(0, 0, -40)},
			}
			for _, ev := range events {
				Expect(store.RecordUsage(ctx, ev)).To(Succeed())
			}

			history, err := store.UsageHistory(ctx, company.ID, now.AddDate(0, 0, -29))
			Expect(err).ToNot(HaveOccurred())
			Expect(history).To(HaveLen(1))
			Expect(history[0].Generations).To(Equal(1))
			Expect(history[0].Revisions).To(Equal(1))
			Expect(history[0].Failures).To(Equal(1))
			Expect(history[0].PromptTokens).To(Equal(13))
		})
	})
})
