package api

import (
	"errors"
	"net/http"

	"bountyhunter/internal/middleware"
	"bountyhunter/internal/service"
	"bountyhunter/pkg/auth"
	"bountyhunter/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type adminRoutes struct {
	us service.UserServiceI
}

func NewAdminRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.WalletAuth) {
	r := &adminRoutes{us: us}
	adm := middleware.NewAuthorization(us)

	h := handler.Group("/admin")
	h.Use(a.WalletAuthMiddleware())
	h.Use(adm.AdminOnly())
	{
		h.GET("/users/:wallet", r.InspectUser)
		h.POST("/points", r.AwardPoints)
	}
}

func (r *adminRoutes) InspectUser(c *gin.Context) {
	log := logger.Logger()

	address, err := auth.NormalizeAddress(c.Param("wallet"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	user, err := r.us.GetUserByWallet(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	completedTasks, err := r.us.GetCompletedTaskIDs(c.Request.Context(), user.ID)
	if err != nil {
		log.Error("failed to get completed tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get completed tasks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet_address":  user.WalletAddress,
		"username":        user.Username,
		"referral_code":   user.ReferralCode,
		"points":          user.Points,
		"is_admin":        user.IsAdmin,
		"created_at":      user.CreatedAt.Unix(),
		"last_seen_at":    user.LastSeenAt.Unix(),
		"completed_tasks": completedTasks,
	})
}

type AwardPointsRequest struct {
	Wallet string `json:"wallet" binding:"required"`
	Points int    `json:"points" binding:"required,min=1"`
	Reason string `json:"reason"`
}

func (r *adminRoutes) AwardPoints(c *gin.Context) {
	log := logger.Logger()

	var req AwardPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	address, err := auth.NormalizeAddress(req.Wallet)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	user, err := r.us.GetUserByWallet(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user"})
		return
	}

	if err := r.us.AwardPoints(c.Request.Context(), user.ID, req.Points); err != nil {
		log.Error("failed to award points", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to award points"})
		return
	}

	log.Info("points awarded manually",
		zap.String("wallet", address),
		zap.Int("points", req.Points),
		zap.String("reason", req.Reason))

	c.JSON(http.StatusOK, gin.H{
		"wallet_address": address,
		"points_awarded": req.Points,
	})
}
