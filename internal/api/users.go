package api

import (
	"errors"
	"net/http"
	"time"

	"bountyhunter/internal/service"
	"bountyhunter/pkg/auth"
	"bountyhunter/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
	lb service.LeaderboardServiceI
	a  *auth.WalletAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, lb service.LeaderboardServiceI, a *auth.WalletAuth) {
	r := &userRoutes{us: us, lb: lb, a: a}

	handler.POST("/auth/wallet", r.ConnectWallet)

	h := handler.Group("/users")
	h.Use(a.WalletAuthMiddleware())
	{
		h.GET("/me", r.GetProfile)
		h.PATCH("/me", r.UpdateProfile)
	}
}

type ConnectWalletRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

type ConnectWalletResponse struct {
	Token         string `json:"token"`
	WalletAddress string `json:"wallet_address"`
	Username      string `json:"username"`
	ReferralCode  string `json:"referral_code"`
	Created       bool   `json:"created"`
}

func (r *userRoutes) ConnectWallet(c *gin.Context) {
	log := logger.Logger()

	var req ConnectWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	address, err := auth.NormalizeAddress(req.WalletAddress)
	if err != nil {
		log.Info("invalid wallet address", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		return
	}

	user, created, err := r.us.Authenticate(c.Request.Context(), address)
	if err != nil {
		log.Error("failed to authenticate wallet", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to authenticate wallet"})
		return
	}

	token, err := r.a.IssueToken(user.ID, user.WalletAddress)
	if err != nil {
		log.Error("failed to issue session token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue session token"})
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	c.JSON(status, ConnectWalletResponse{
		Token:         token,
		WalletAddress: user.WalletAddress,
		Username:      user.Username,
		ReferralCode:  user.ReferralCode,
		Created:       created,
	})
}

func (r *userRoutes) GetProfile(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	user, err := r.us.GetUserByID(c.Request.Context(), walletUser.UserID)
	if err != nil {
		log.Error("failed to get user", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	rank, err := r.lb.GetUserRank(c.Request.Context(), walletUser.UserID)
	if err != nil {
		log.Error("failed to get user rank", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user rank"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wallet_address": user.WalletAddress,
		"username":       user.Username,
		"referral_code":  user.ReferralCode,
		"points":         user.Points,
		"rank":           rank.Rank,
		"created_at":     user.CreatedAt.Format(time.RFC3339),
	})
}

type UpdateProfileRequest struct {
	Username string `json:"username" binding:"required"`
}

func (r *userRoutes) UpdateProfile(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := r.us.UpdateUsername(c.Request.Context(), walletUser.UserID, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUsername):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "username must be 3-32 chars of letters, digits or underscore"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			log.Error("failed to update username", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update username"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username": req.Username,
	})
}
