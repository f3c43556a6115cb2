package http

import (
	"fmt"
	"net/http"
	"time"
	"xiaoliu/internal/entities"
	"xiaoliu/internal/interfaces"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	ServiceName    = "xiaoliu-ai"
	ServiceVersion = "1.0.0"

	serviceGreeting = "小柳AI助手已上线！"
	maxRequestBody  = 1 << 20
)

// headlineFeatures is the short list advertised on the root endpoint.
var headlineFeatures = []string{"文档生成", "代码分析", "配色方案", "并行开发"}

type Handler struct {
	router interfaces.ChatRouter
	now    func() time.Time
}

func NewHandler(router interfaces.ChatRouter) *Handler {
	return &Handler{
		router: router,
		now:    time.Now,
	}
}

// chatPayload distinguishes a missing message from an empty one.
type chatPayload struct {
	Message *string `json:"message" binding:"required"`
	UserID  string  `json:"user_id"`
}

// NewEngine returns a bare gin engine that trusts X-Forwarded-For only from
// the given proxies. With none, ClientIP is the peer address.
func NewEngine(trustedProxies []string) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	return r, nil
}

func SetupRoutes(r *gin.Engine, router interfaces.ChatRouter, middleware *Middleware) {
	h := NewHandler(router)

	r.Use(RequestID())
	r.Use(RequestLogger())
	r.Use(Recovery())
	r.Use(SecurityHeaders())
	r.Use(RequestSizeLimiter(maxRequestBody))
	r.Use(middleware.CORSMiddleware())

	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/features", h.Features)
	r.POST("/chat", middleware.RateLimitPerClient(), h.Chat)
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, entities.ServiceInfo{
		Message:  serviceGreeting,
		Status:   "running",
		Version:  ServiceVersion,
		Features: headlineFeatures,
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, entities.HealthStatus{
		Status:    "healthy",
		Service:   ServiceName,
		Timestamp: entities.Timestamp(h.now()),
		Version:   ServiceVersion,
	})
}

func (h *Handler) Features(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"features": h.router.Features()})
}

// Chat always answers 200 for a well-formed request; upstream failures are
// described inside the reply text. Anything else is a 500 with detail.
func (h *Handler) Chat(c *gin.Context) {
	var payload chatPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Warn().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("invalid chat request")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	req := entities.ChatRequest{
		Message: *payload.Message,
		UserID:  payload.UserID,
	}
	if req.UserID == "" {
		req.UserID = entities.DefaultUserID
	}

	resp, err := h.router.Route(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("failed to route chat message")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}
