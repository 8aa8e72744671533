package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/liliang-cn/askweb/internal/domain"
	"github.com/liliang-cn/askweb/internal/service"
)

// Handler handles the chat API requests
type Handler struct {
	chatService   *service.ChatService
	healthService *service.HealthService
	logger        *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(chatService *service.ChatService, healthService *service.HealthService, logger *zap.Logger) *Handler {
	return &Handler{
		chatService:   chatService,
		healthService: healthService,
		logger:        logger,
	}
}

// RegisterRoutes registers the API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.POST("/chat", h.Chat)
	r.GET("/api/conversations/:id", h.Conversation)
}

// Health reports reachability of the LLM endpoint and the live-data
// backend. 200 only when both probes succeed.
func (h *Handler) Health(c *gin.Context) {
	status := h.healthService.Check(c.Request.Context())

	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// Chat runs one query through the response pipeline.
func (h *Handler) Chat(c *gin.Context) {
	var req domain.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.chatService.Respond(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoQuery):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no query provided"})
		case errors.Is(err, domain.ErrAgentNotReady):
			h.logger.Error("chat request received but agent is not initialized")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "agent not initialized, check backend logs and LLM connection"})
		default:
			h.logger.Error("unhandled error in chat endpoint", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "an unexpected error occurred", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Conversation returns the logged message history for a session.
func (h *Handler) Conversation(c *gin.Context) {
	sessionID := c.Param("id")

	messages, err := h.chatService.History(sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			return
		}
		h.logger.Error("failed to load conversation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "messages": messages})
}
