package usecases_test

import (
	"errors"
	"time"

	"chatdesk/internal/entities"
	. "chatdesk/internal/usecases"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TokenService", func() {
	var (
		now    time.Time
		tokens *TokenService
		userID uuid.UUID
	)

	BeforeEach(func() {
		now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		tokens = NewTokenService("test-secret", time.Hour, 7*24*time.Hour).WithClock(func() time.Time { return now })
		userID = uuid.New()
	})

	It("round trips the subject", func() {
		token, err := tokens.IssueAccess(userID)
		Expect(err).ToNot(HaveOccurred())

		claims, err := tokens.Verify(token)
		Expect(err).ToNot(HaveOccurred())
		Expect(claims.UserID()).To(Equal(userID))
		Expect(claims.Type).To(Equal(TokenTypeAccess))
		Expect(claims.ExpiresAt.Time).To(BeTemporally("==", now.Add(time.Hour)))
	})

	It("rejects a token once its lifetime has passed", func() {
		token, _ := tokens.IssueAccess(userID)

		now = now.Add(59 * time.Minute)
		_, err := tokens.Verify(token)
		Expect(err).ToNot(HaveOccurred())

		now = now.Add(2 * time.Minute)
		_, err = tokens.Verify(token)
		Expect(errors.Is(err, entities.ErrInvalidToken)).To(BeTrue())
	})

	It("keeps refresh tokens valid for days", func() {
		token, _ := tokens.IssueRefresh(userID)
		now = now.Add(6 * 24 * time.Hour)
		claims, err := tokens.VerifyType(token, TokenTypeRefresh)
		Expect(err).ToNot(HaveOccurred())
		Expect(claims.Subject).To(Equal(userID.String()))
	})

	It("does not accept one token kind for the other", func() {
		pair, err := tokens.IssuePair(userID)
		Expect(err).ToNot(HaveOccurred())

		_, err = tokens.VerifyType(pair.AccessToken, TokenTypeRefresh)
		Expect(errors.Is(err, entities.ErrInvalidToken)).To(BeTrue())
		_, err = tokens.VerifyType(pair.RefreshToken, TokenTypeAccess)
		Expect(errors.Is(err, entities.ErrInvalidToken)).To(BeTrue())
	})

	It("describes the pair like an OAuth2 response", func() {
		pair, err := tokens.IssuePair(userID)
		Expect(err).ToNot(HaveOccurred())
		Expect(pair.TokenType).To(Equal("bearer"))
		Expect(pair.ExpiresIn).To(BeEquivalentTo(3600))
	})

	It("rejects tokens signed with another secret", func() {
		other := NewTokenService("other-secret", time.Hour, time.Hour).WithClock(func() time.Time { return now })
		token, _ := other.IssueAccess(userID)
		_, err := tokens.Verify(token)
		Expect(errors.Is(err, entities.ErrInvalidToken)).To(BeTrue())
	})

	It("rejects unsigned and malformed tokens", func() {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": userID.String(), "exp": now.Add(time.Hour).Unix(), "typ": TokenTypeAccess,
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		Expect(err).ToNot(HaveOccurred())

		for _, token := range []string{raw, "", "not.a.token"} {
			_, err := tokens.Verify(token)
			Expect(errors.Is(err, entities.ErrInvalidToken)).To(BeTrue())
		}
	})

	It("rejects a subject that is not a user id", func() {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "42", "exp": now.Add(time.Hour).Unix(), "typ": TokenTypeAccess,
		})
		raw, _ := forged.SignedString([]byte("test-secret"))
		_, err := tokens.Verify(raw)
		Expect(errors.Is(err, entities.ErrInvalidToken)).To(BeTrue())
	})
})
