package http

import (
	"net/http"

	"chatdesk/internal/metrics"
	"chatdesk/internal/usecases"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const Version = "1.0.0"

// Options are the HTTP level settings taken from config.Config
type Options struct {
	AppName           string
	CORSOrigins       []string
	MaxRequestBody    int64
	AllowRegistration bool
	RateLimitRPS      float64
	RateLimitBurst    int
}

type Handler struct {
	auth       *usecases.AuthUsecase
	chats      *usecases.ChatService
	messages   *usecases.MessageService
	generation *usecases.GenerationService
	aiConfig   *usecases.AIConfigUsecase
	dashboard  *usecases.DashboardUsecase
	guard      *usecases.AccessGuard
	opts       Options
}

type Services struct {
	Auth       *usecases.AuthUsecase
	Chats      *usecases.ChatService
	Messages   *usecases.MessageService
	Generation *usecases.GenerationService
	AIConfig   *usecases.AIConfigUsecase
	Dashboard  *usecases.DashboardUsecase
	Guard      *usecases.AccessGuard
}

func NewHandler(s Services, opts Options) *Handler {
	return &Handler{
		auth:       s.Auth,
		chats:      s.Chats,
		messages:   s.Messages,
		generation: s.Generation,
		aiConfig:   s.AIConfig,
		dashboard:  s.Dashboard,
		guard:      s.Guard,
		opts:       opts,
	}
}

func SetupRoutes(r *gin.Engine, s Services, opts Options, m *metrics.Metrics, log *zap.Logger) {
	h := NewHandler(s, opts)
	mw := NewMiddleware(s.Auth)

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	if m != nil {
		r.Use(m.Middleware())
	}
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(opts.MaxRequestBody))
	r.Use(CORS(opts.CORSOrigins))

	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", mw.OptionalAuth(), h.Logout)
		authGroup.POST("/register", h.Register)
		authGroup.GET("/me", mw.AuthRequired(), h.Me)
		authGroup.PUT("/me", mw.AuthRequired(), h.UpdateMe)
	}

	api := r.Group("/api")
	api.Use(mw.AuthRequired())
	aiLimit := mw.RateLimitPerUser(rate.Limit(opts.RateLimitRPS), opts.RateLimitBurst)
	{
		chats := api.Group("/chats")
		chats.POST("", h.CreateChat)
		chats.GET("", h.ListChats)
		chats.GET("/:id", h.GetChat)
		chats.GET("/:id/with-messages", h.GetChatWithMessages)
		chats.GET("/:id/messages", h.ListChatMessages)
		chats.PUT("/:id", h.UpdateChat)
		chats.DELETE("/:id", h.DeleteChat)

		messages := api.Group("/messages")
		messages.POST("", h.CreateMessage)
		messages.POST("/import", h.ImportMessages)
		messages.POST("/generate-ai-response", aiLimit, h.GenerateAIResponse)
		messages.POST("/revise-with-ai", aiLimit, h.ReviseWithAI)
		messages.GET("/:id", h.GetMessage)
		messages.PUT("/:id", h.UpdateMessage)
		messages.DELETE("/:id", h.DeleteMessage)

		aiConfig := api.Group("/ai-config")
		aiConfig.POST("", h.CreateAIConfig)
		aiConfig.GET("/effective", h.GetEffectiveAIConfig)
		aiConfig.GET("/global", h.GetGlobalAIConfig)
		aiConfig.PUT("/global", h.UpsertGlobalAIConfig)
		aiConfig.DELETE("/global", h.DeleteGlobalAIConfig)
		aiConfig.GET("/chat/:chat_id", h.GetChatAIConfig)
		aiConfig.PUT("/chat/:chat_id", h.UpsertChatAIConfig)
		aiConfig.DELETE("/chat/:chat_id", h.DeleteChatAIConfig)

		api.GET("/usage", h.GetUsage)
	}

	admin := r.Group("/api/admin")
	admin.Use(mw.AuthRequired())
	admin.Use(mw.AdminRequired())
	{
		admin.GET("/stats", h.AdminStats)
		admin.GET("/companies", h.AdminListCompanies)
		admin.POST("/companies", h.AdminCreateCompany)
		admin.PUT("/companies/:id", h.AdminRenameCompany)
		admin.DELETE("/companies/:id", h.AdminDeleteCompany)
		admin.GET("/users", h.AdminListUsers)
		admin.POST("/users", h.AdminCreateUser)
		admin.PUT("/users/:id/status", h.AdminUpdateUserStatus)
		admin.DELETE("/users/:id", h.AdminDeleteUser)
	}
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"name": h.opts.AppName, "version": Version})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
