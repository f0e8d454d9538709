package config_test

import (
	"os"
	"time"

	. "chatdesk/internal/config"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var managedEnv = []string{
	"APP_ENV", "JWT_SECRET", "ACCESS_TOKEN_EXPIRE_MINUTES", "REFRESH_TOKEN_EXPIRE_DAYS",
	"AI_DEFAULT_CONTEXT_MESSAGES", "AI_MAX_CONTEXT_MESSAGES", "CORS_ORIGINS", "LLM_TIMEOUT",
	"SUPERADMIN_EMAIL", "SUPERADMIN_PASSWORD", "DATABASE_URL", "LLM_MODEL",
}

func setEnv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
}

var _ = Describe("Load", func() {
	BeforeEach(func() {
		for _, key := range managedEnv {
			if old, ok := os.LookupEnv(key); ok {
				DeferCleanup(os.Setenv, key, old)
			} else {
				DeferCleanup(os.Unsetenv, key)
			}
			Expect(os.Unsetenv(key)).To(Succeed())
		}
	})

	It("applies defaults in development", func() {
		cfg, err := Load()
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.JWT.AccessTTL).To(Equal(60 * time.Minute))
		Expect(cfg.JWT.RefreshTTL).To(Equal(7 * 24 * time.Hour))
		Expect(cfg.JWT.Secret).ToNot(BeEmpty())
		Expect(cfg.AI.DefaultContextMessages).To(Equal(10))
		Expect(cfg.AI.MaxContextMessages).To(Equal(100))
		Expect(cfg.LLM.Model).To(Equal("gpt-4o-mini"))
		Expect(cfg.LLM.Timeout).To(Equal(60 * time.Second))
		Expect(cfg.DB.URL).To(BeEmpty())
		Expect(cfg.IsProduction()).To(BeFalse())
	})

	It("reads overrides from the environment", func() {
		setEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "15")
		setEnv("CORS_ORIGINS", "https://a.example, https://b.example")
		setEnv("LLM_TIMEOUT", "5s")

		cfg, err := Load()
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.JWT.AccessTTL).To(Equal(15 * time.Minute))
		Expect(cfg.Server.CORSOrigins).To(Equal([]string{"https://a.example", "https://b.example"}))
		Expect(cfg.LLM.Timeout).To(Equal(5 * time.Second))
	})

	It("requires a secret in production", func() {
		setEnv("APP_ENV", "production")
		_, err := Load()
		Expect(err).To(MatchError(ContainSubstring("JWT_SECRET")))

		setEnv("JWT_SECRET", "prod-secret")
		cfg, err := Load()
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.JWT.Secret).To(Equal("prod-secret"))
	})

	It("rejects inconsistent settings", func() {
		setEnv("ACCESS_TOKEN_EXPIRE_MINUTES", "0")
		setEnv("AI_DEFAULT_CONTEXT_MESSAGES", "50")
		setEnv("AI_MAX_CONTEXT_MESSAGES", "20")
		setEnv("SUPERADMIN_EMAIL", "root@example.com")

		_, err := Load()
		Expect(err).To(MatchError(ContainSubstring("ACCESS_TOKEN_EXPIRE_MINUTES")))
		Expect(err).To(MatchError(ContainSubstring("context message limits")))
		Expect(err).To(MatchError(ContainSubstring("SUPERADMIN_PASSWORD")))
	})
})
