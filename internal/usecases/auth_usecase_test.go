package usecases_test

import (
	"context"
	"time"

	"chatdesk/internal/entities"
	"chatdesk/internal/repository/memstore"
	. "chatdesk/internal/usecases"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var _ = Describe("AuthUsecase", func() {
	var (
		ctx    context.Context
		store  *memstore.Store
		tokens *TokenService
		auth   *AuthUsecase
		user   *entities.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memstore.New()
		tokens = NewTokenService("test-secret", time.Hour, 7*24*time.Hour)
		auth = NewAuthUsecase(store, fastHasher(), tokens, zap.NewNop())

		var err error
		user, err = auth.Register(ctx, RegisterInput{
			Email: "Manager@Example.com ", Password: "correct-password", Name: "Manager", CompanyName: "Acme",
		})
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("Register", func() {
		It("creates the company and an active user with a normalised email", func() {
			Expect(user.Email).To(Equal("manager@example.com"))
			Expect(user.IsActive).To(BeTrue())
			Expect(user.IsSuperuser).To(BeFalse())

			company, err := store.GetCompany(ctx, user.CompanyID)
			Expect(err).ToNot(HaveOccurred())
			Expect(company.Name).To(Equal("Acme"))
		})

		It("refuses a taken email without creating another company", func() {
			_, err := auth.Register(ctx, RegisterInput{Email: "manager@example.com", Password: "x-password", Name: "B"})
			Expect(err).To(MatchError(entities.ErrConflict))

			companies, _ := store.ListCompanies(ctx)
			Expect(companies).To(HaveLen(1))
		})
	})

	Describe("Login", func() {
		It("issues a pair whose access token resolves to the user", func() {
			pair, loggedIn, err := auth.Login(ctx, "manager@example.com", "correct-password")
			Expect(err).ToNot(HaveOccurred())
			Expect(loggedIn.ID).To(Equal(user.ID))

			session, err := auth.ResolveSession(ctx, pair.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(session.ID).To(Equal(user.ID))
		})

		It("fails the same way for unknown email, wrong password and inactive account", func() {
			_, _, unknown := auth.Login(ctx, "nobody@example.com", "correct-password")
			_, _, wrong := auth.Login(ctx, "manager@example.com", "wrong-password")

			inactive := false
			_, err := store.UpdateUser(ctx, user.ID, entities.UserPatch{IsActive: &inactive})
			Expect(err).ToNot(HaveOccurred())
			_, _, disabled := auth.Login(ctx, "manager@example.com", "correct-password")

			Expect(unknown).To(Equal(entities.ErrInvalidCredentials))
			Expect(wrong).To(Equal(entities.ErrInvalidCredentials))
			Expect(disabled).To(Equal(entities.ErrInvalidCredentials))
		})
	})

	Describe("Refresh", func() {
		It("issues a new pair for the same subject", func() {
			pair, _, err := auth.Login(ctx, "manager@example.com", "correct-password")
			Expect(err).ToNot(HaveOccurred())

			refreshed, err := auth.Refresh(ctx, pair.RefreshToken)
			Expect(err).ToNot(HaveOccurred())
			claims, err := tokens.Verify(refreshed.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.Subject).To(Equal(user.ID.String()))
		})

		It("rejects an access token and a deleted subject", func() {
			pair, _, _ := auth.Login(ctx, "manager@example.com", "correct-password")
			_, err := auth.Refresh(ctx, pair.AccessToken)
			Expect(err).To(MatchError(entities.ErrInvalidCredentials))

			_, err = store.DeleteUser(ctx, user.ID)
			Expect(err).ToNot(HaveOccurred())
			_, err = auth.Refresh(ctx, pair.RefreshToken)
			Expect(err).To(MatchError(entities.ErrInvalidCredentials))
		})
	})

	Describe("ResolveSession", func() {
		It("treats garbage, unknown subjects and deleted users as anonymous", func() {
			session, err := auth.ResolveSession(ctx, "garbage")
			Expect(err).ToNot(HaveOccurred())
			Expect(session).To(BeNil())

			stranger, _ := tokens.IssueAccess(uuid.New())
			session, err = auth.ResolveSession(ctx, stranger)
			Expect(err).ToNot(HaveOccurred())
			Expect(session).To(BeNil())

			pair, _, _ := auth.Login(ctx, "manager@example.com", "correct-password")
			_, _ = store.DeleteUser(ctx, user.ID)
			session, err = auth.ResolveSession(ctx, pair.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(session).To(BeNil())
		})
	})

	Describe("UpdateProfile", func() {
		It("changes the password used by Login", func() {
			_, err := auth.UpdateProfile(ctx, user.ID, ProfileUpdate{Password: strPtr("brand-new-password")})
			Expect(err).ToNot(HaveOccurred())

			_, _, err = auth.Login(ctx, "manager@example.com", "correct-password")
			Expect(err).To(MatchError(entities.ErrInvalidCredentials))
			_, _, err = auth.Login(ctx, "manager@example.com", "brand-new-password")
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("EnsureSuperadmin", func() {
		It("creates the administrator once", func() {
			Expect(auth.EnsureSuperadmin(ctx, "root@example.com", "root-password")).To(Succeed())
			Expect(auth.EnsureSuperadmin(ctx, "root@example.com", "root-password")).To(Succeed())

			admin, err := store.GetUserByEmail(ctx, "root@example.com")
			Expect(err).ToNot(HaveOccurred())
			Expect(admin.IsSuperuser).To(BeTrue())

			company, _ := store.GetCompany(ctx, admin.CompanyID)
			Expect(company.Name).To(Equal("Admin Company"))
			companies, _ := store.ListCompanies(ctx)
			Expect(companies).To(HaveLen(2))
		})
	})
})
