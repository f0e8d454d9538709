package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"chatdesk/internal/entities"
	"chatdesk/internal/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	ctxUser      = "user"
	ctxRequestID = "request_id"

	HeaderRequestID = "X-Request-ID"
)

// SessionResolver maps a bearer token to a user; (nil, nil) means anonymous.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*entities.User, error)
}

type Middleware struct {
	sessions     SessionResolver
	rateLimiters map[uuid.UUID]*rate.Limiter
	mu           sync.Mutex
}

func NewMiddleware(sessions SessionResolver) *Middleware {
	return &Middleware{
		sessions:     sessions,
		rateLimiters: make(map[uuid.UUID]*rate.Limiter),
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// resolve stores the session user in the context. It returns false after aborting on a store failure.
func (m *Middleware) resolve(c *gin.Context) bool {
	token := bearerToken(c)
	if token == "" {
		return true
	}
	user, err := m.sessions.ResolveSession(c.Request.Context(), token)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("session lookup failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return false
	}
	if user != nil {
		c.Set(ctxUser, user)
	}
	return true
}

// OptionalAuth resolves the caller when a token is present and lets anonymous requests through.
func (m *Middleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.resolve(c) {
			c.Next()
		}
	}
}

func (m *Middleware) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.resolve(c) {
			return
		}
		if currentUser(c) == nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials"})
			return
		}
		c.Next()
	}
}

// AdminRequired must follow AuthRequired
func (m *Middleware) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsSuperuser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
			return
		}
		c.Next()
	}
}

// RateLimitPerUser limits requests per authenticated user (must follow AuthRequired)
func (m *Middleware) RateLimitPerUser(r rate.Limit, b int) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User identity not found for rate limiting"})
			return
		}

		m.mu.Lock()
		limiter, exists := m.rateLimiters[user.ID]
		if !exists {
			limiter = rate.NewLimiter(r, b)
			m.rateLimiters[user.ID] = limiter
		}
		m.mu.Unlock()

		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}

		c.Next()
	}
}

func currentUser(c *gin.Context) *entities.User {
	if v, ok := c.Get(ctxUser); ok {
		if user, ok := v.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// RequestID propagates or assigns X-Request-ID
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger attaches a request scoped zap logger and writes one line per request
func RequestLogger(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		l := base.With(zap.String("request_id", c.GetString(ctxRequestID)))
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), l))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if user := currentUser(c); user != nil {
			fields = append(fields, zap.String("user_id", user.ID.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= 500:
			l.Error("request", fields...)
		case status >= 400:
			l.Warn("request", fields...)
		default:
			l.Info("request", fields...)
		}
	}
}

// CORS allows the configured origins; "*" allows any origin without credentials
func CORS(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", HeaderRequestID},
		ExposeHeaders:    []string{HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			config.AllowAllOrigins = true
			config.AllowCredentials = false
		}
	}
	if !config.AllowAllOrigins {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}

// SecurityHeaders adds security headers to prevent common attacks
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Writer.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Next()
	}
}

// RequestSizeLimiter limits request body size to prevent DoS
func RequestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
