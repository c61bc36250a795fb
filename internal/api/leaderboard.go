package api

import (
	"errors"
	"net/http"
	"strconv"

	"bountyhunter/internal/service"
	"bountyhunter/pkg/auth"
	"bountyhunter/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type leaderboardRoutes struct {
	lb service.LeaderboardServiceI
	a  *auth.WalletAuth
}

// Leaderboard and program stats are readable without a session; only the
// caller-relative rank needs one.
func NewLeaderboardRoutes(handler *gin.RouterGroup, lb service.LeaderboardServiceI, a *auth.WalletAuth) {
	r := &leaderboardRoutes{lb: lb, a: a}

	handler.GET("/leaderboard", r.GetLeaderboard)
	handler.GET("/stats", r.GetProgramStats)

	h := handler.Group("/leaderboard")
	h.Use(a.WalletAuthMiddleware())
	{
		h.GET("/me", r.GetMyRank)
	}
}

func (r *leaderboardRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	entries, err := r.lb.GetLeaderboard(c.Request.Context(), limit)
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	response := make([]gin.H, len(entries))
	for i, entry := range entries {
		response[i] = gin.H{
			"rank":      entry.Rank,
			"username":  entry.Username,
			"points":    entry.Points,
			"referrals": entry.Referrals,
		}
	}

	c.JSON(http.StatusOK, response)
}

func (r *leaderboardRoutes) GetMyRank(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	rank, err := r.lb.GetUserRank(c.Request.Context(), walletUser.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		log.Error("failed to get user rank", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get user rank"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rank":        rank.Rank,
		"points":      rank.Points,
		"total_users": rank.TotalUsers,
		"percentile":  rank.Percentile,
	})
}

func (r *leaderboardRoutes) GetProgramStats(c *gin.Context) {
	log := logger.Logger()

	stats, err := r.lb.GetProgramStats(c.Request.Context())
	if err != nil {
		log.Error("failed to get program stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get program stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":         stats.TotalUsers,
		"total_points":        stats.TotalPointsAwarded,
		"completed_tasks":     stats.CompletedTasks,
		"completed_referrals": stats.CompletedReferrals,
	})
}
