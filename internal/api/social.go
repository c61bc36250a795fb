package api

import (
	"errors"
	"net/http"

	"bountyhunter/internal/model"
	"bountyhunter/internal/repository"
	"bountyhunter/internal/service"
	"bountyhunter/pkg/auth"
	"bountyhunter/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type socialRoutes struct {
	ss service.SocialServiceI
	a  *auth.WalletAuth
}

func NewSocialRoutes(handler *gin.RouterGroup, ss service.SocialServiceI, a *auth.WalletAuth) {
	r := &socialRoutes{ss: ss, a: a}
	h := handler.Group("/social")
	h.Use(a.WalletAuthMiddleware())
	{
		h.GET("", r.ListConnections)
		h.POST("/telegram", r.ConnectTelegram)
		h.POST("/x", r.ConnectX)
		h.DELETE("/:platform", r.Disconnect)
	}
}

func connectionResponse(conn *model.SocialConnection) gin.H {
	return gin.H{
		"platform":          conn.Platform,
		"platform_username": conn.PlatformUsername,
		"is_active":         conn.IsActive,
		"connected_at":      conn.ConnectedAt.Unix(),
	}
}

type ConnectTelegramRequest struct {
	InitData string `json:"init_data" binding:"required"`
}

func (r *socialRoutes) ConnectTelegram(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req ConnectTelegramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	conn, err := r.ss.ConnectTelegram(c.Request.Context(), walletUser.UserID, req.InitData)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInitData):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram init data"})
		case errors.Is(err, service.ErrConnectionTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "telegram account already linked to another user"})
		default:
			log.Error("failed to connect telegram", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to connect telegram"})
		}
		return
	}

	c.JSON(http.StatusCreated, connectionResponse(conn))
}

type ConnectXRequest struct {
	Username string `json:"username" binding:"required"`
}

func (r *socialRoutes) ConnectX(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req ConnectXRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	conn, err := r.ss.ConnectX(c.Request.Context(), walletUser.UserID, req.Username)
	if err != nil {
		if errors.Is(err, service.ErrConnectionTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "x account already linked to another user"})
			return
		}
		log.Error("failed to connect x account", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid x handle"})
		return
	}

	c.JSON(http.StatusCreated, connectionResponse(conn))
}

func (r *socialRoutes) Disconnect(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	platform := model.SocialPlatform(c.Param("platform"))
	if !platform.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform"})
		return
	}

	err := r.ss.Disconnect(c.Request.Context(), walletUser.UserID, platform)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active connection for platform"})
			return
		}
		log.Error("failed to disconnect", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disconnect"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"platform":  platform,
		"is_active": false,
	})
}

func (r *socialRoutes) ListConnections(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	conns, err := r.ss.ListConnections(c.Request.Context(), walletUser.UserID)
	if err != nil {
		log.Error("failed to list connections", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list connections"})
		return
	}

	response := make([]gin.H, len(conns))
	for i, conn := range conns {
		response[i] = connectionResponse(conn)
	}

	c.JSON(http.StatusOK, response)
}
