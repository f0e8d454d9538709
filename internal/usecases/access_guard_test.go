package usecases_test

import (
	"context"

	"chatdesk/internal/entities"
	"chatdesk/internal/repository/memstore"
	. "chatdesk/internal/usecases"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AccessGuard", func() {
	var (
		ctx        context.Context
		store      *memstore.Store
		guard      *AccessGuard
		owner      *entities.User
		other      *entities.User
		chat       *entities.Chat
		ownMessage *entities.Message
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memstore.New()
		guard = NewAccessGuard(store, store)
		owner, chat = seedOwner(ctx, store, "owner@example.com")
		other, _ = seedOwner(ctx, store, "other@example.com")
		ownMessage = addMessage(ctx, store, chat.ID, entities.RoleClient, "hi")
	})

	It("lets the owner through", func() {
		Expect(guard.AuthorizeChat(ctx, owner, chat.ID)).To(Equal(chat))
		msg, msgChat, err := guard.AuthorizeMessage(ctx, owner, ownMessage.ID)
		Expect(err).ToNot(HaveOccurred())
		Expect(msg.ID).To(Equal(ownMessage.ID))
		Expect(msgChat.ID).To(Equal(chat.ID))
	})

	It("forbids another user's chat and message", func() {
		_, err := guard.AuthorizeChat(ctx, other, chat.ID)
		Expect(err).To(MatchError(entities.ErrForbidden))
		_, _, err = guard.AuthorizeMessage(ctx, other, ownMessage.ID)
		Expect(err).To(MatchError(entities.ErrForbidden))
	})

	It("forbids a colleague in the same company", func() {
		colleague := &entities.User{Email: "colleague@example.com", CompanyID: owner.CompanyID, IsActive: true}
		Expect(store.CreateUser(ctx, colleague)).To(Succeed())
		_, err := guard.AuthorizeChat(ctx, colleague, chat.ID)
		Expect(err).To(MatchError(entities.ErrForbidden))
	})

	It("reports missing records before ownership", func() {
		_, err := guard.AuthorizeChat(ctx, other, uuid.New())
		Expect(err).To(MatchError(entities.ErrNotFound))
		_, _, err = guard.AuthorizeMessage(ctx, other, uuid.New())
		Expect(err).To(MatchError(entities.ErrNotFound))
	})
})
