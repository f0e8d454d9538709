package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatdesk/internal/config"
	"chatdesk/internal/infrastructure"
	"chatdesk/internal/interfaces"
	"chatdesk/internal/interfaces/http"
	"chatdesk/internal/logger"
	"chatdesk/internal/metrics"
	"chatdesk/internal/repository"
	"chatdesk/internal/repository/memstore"
	"chatdesk/internal/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.Init(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: "chatdesk",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("starting", cfg.LogFields()...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer store.Close()

	m := metrics.New("chatdesk")
	hasher := infrastructure.NewArgon2Hasher(infrastructure.DefaultArgon2Params)
	aiClient := infrastructure.NewOpenAIClient(infrastructure.OpenAIOptions{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if cfg.LLM.APIKey == "" && cfg.LLM.BaseURL == "" {
		log.Warn("OPENAI_API_KEY not set, AI generation will fail")
	}

	tokens := usecases.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authUsecase := usecases.NewAuthUsecase(store, hasher, tokens, log)
	guard := usecases.NewAccessGuard(store, store)
	aiConfig := usecases.NewAIConfigUsecase(store)
	assembler := usecases.NewContextAssembler(store, aiConfig, cfg.AI.DefaultContextMessages, cfg.AI.MaxContextMessages)

	services := http.Services{
		Auth:       authUsecase,
		Chats:      usecases.NewChatService(store, guard),
		Messages:   usecases.NewMessageService(store, guard),
		Generation: usecases.NewGenerationService(store, assembler, aiClient, m, cfg.LLM.Timeout),
		AIConfig:   aiConfig,
		Dashboard:  usecases.NewDashboardUsecase(store, authUsecase),
		Guard:      guard,
	}

	if cfg.Auth.SuperadminEmail != "" {
		if err := authUsecase.EnsureSuperadmin(ctx, cfg.Auth.SuperadminEmail, cfg.Auth.SuperadminPassword); err != nil {
			log.Warn("failed to ensure superadmin", zap.Error(err))
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	http.SetupRoutes(r, services, http.Options{
		AppName:           cfg.AppName,
		CORSOrigins:       cfg.Server.CORSOrigins,
		MaxRequestBody:    cfg.Server.MaxRequestBody,
		AllowRegistration: cfg.Auth.AllowRegistration,
		RateLimitRPS:      cfg.RateLimit.RPS,
		RateLimitBurst:    cfg.RateLimit.Burst,
	}, m, log)

	srv := &nethttp.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore connects to Postgres, or falls back to the in-memory store when DATABASE_URL is empty
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (interfaces.Store, error) {
	if cfg.DB.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory store; data is lost on exit")
		return memstore.New(), nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	pg, err := infrastructure.NewPostgresClient(connectCtx, infrastructure.PostgresOptions{
		URL:             cfg.DB.URL,
		MaxConns:        cfg.DB.MaxConns,
		MinConns:        cfg.DB.MinConns,
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
		MaxConnIdleTime: cfg.DB.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}
	log.Info("connected to postgres")
	return repository.NewPostgresStore(pg.Pool), nil
}
