package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/liliang-cn/askweb/internal/api/middleware"
	"github.com/liliang-cn/askweb/internal/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(
	chatService *service.ChatService,
	healthService *service.HealthService,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())

	// Chat page
	SetupStaticRoutes(r)

	handler := NewHandler(chatService, healthService, logger)
	handler.RegisterRoutes(r)

	return r
}
