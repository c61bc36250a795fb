package api

import (
	"errors"
	"net/http"

	"bountyhunter/internal/service"
	"bountyhunter/pkg/auth"
	"bountyhunter/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type referralRoutes struct {
	rs service.ReferralServiceI
	a  *auth.WalletAuth
}

func NewReferralRoutes(handler *gin.RouterGroup, rs service.ReferralServiceI, a *auth.WalletAuth) {
	r := &referralRoutes{rs: rs, a: a}
	h := handler.Group("/referrals")
	h.Use(a.WalletAuthMiddleware())
	{
		h.POST("/apply", r.ApplyCode)
		h.GET("", r.ListReferrals)
		h.GET("/stats", r.GetStats)
	}
}

type ApplyReferralRequest struct {
	Code string `json:"code" binding:"required"`
}

func (r *referralRoutes) ApplyCode(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	var req ApplyReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ref, err := r.rs.ApplyCode(c.Request.Context(), walletUser.UserID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReferralCodeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "referral code not found"})
		case errors.Is(err, service.ErrSelfReferral):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cannot use your own referral code"})
		case errors.Is(err, service.ErrAlreadyReferred):
			c.JSON(http.StatusConflict, gin.H{"error": "a referral code was already applied"})
		default:
			log.Error("failed to apply referral code", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply referral code"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"referral_id":    ref.ID,
		"status":         ref.Status,
		"points_awarded": ref.RefereePoints,
	})
}

func (r *referralRoutes) ListReferrals(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	referees, err := r.rs.ListReferrals(c.Request.Context(), walletUser.UserID)
	if err != nil {
		log.Error("failed to list referrals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list referrals"})
		return
	}

	response := make([]gin.H, len(referees))
	for i, referee := range referees {
		response[i] = gin.H{
			"username":       referee.Username,
			"wallet_address": referee.WalletAddress,
			"status":         referee.Status,
			"points_earned":  referee.PointsEarned,
			"joined_at":      referee.JoinedAt.Unix(),
		}
	}

	c.JSON(http.StatusOK, response)
}

func (r *referralRoutes) GetStats(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	stats, err := r.rs.GetStats(c.Request.Context(), walletUser.UserID)
	if err != nil {
		log.Error("failed to get referral stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get referral stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_referrals":     stats.TotalReferrals,
		"pending_referrals":   stats.PendingReferrals,
		"completed_referrals": stats.CompletedReferrals,
		"points_earned":       stats.PointsEarned,
	})
}
