package api

import (
	"errors"
	"net/http"

	"bountyhunter/internal/model"
	"bountyhunter/internal/service"
	"bountyhunter/pkg/auth"
	"bountyhunter/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type taskRoutes struct {
	ts service.TaskServiceI
	a  *auth.WalletAuth
}

func NewTaskRoutes(handler *gin.RouterGroup, ts service.TaskServiceI, a *auth.WalletAuth) {
	r := &taskRoutes{ts: ts, a: a}
	h := handler.Group("/tasks")
	h.Use(a.WalletAuthMiddleware())
	{
		h.GET("", r.ListTasks)
		h.POST("/:task_id/start", r.StartTask)
		h.POST("/:task_id/claim", r.ClaimTask)
	}
}

func taskViewResponse(view *model.UserTaskView) gin.H {
	var started, claimed, completed *int64
	if view.StartedAt != nil {
		unix := view.StartedAt.Unix()
		started = &unix
	}
	if view.ClaimedAt != nil {
		unix := view.ClaimedAt.Unix()
		claimed = &unix
	}
	if view.CompletedAt != nil {
		unix := view.CompletedAt.Unix()
		completed = &unix
	}

	return gin.H{
		"task_id":      view.Task.ID,
		"title":        view.Task.Title,
		"description":  view.Task.Description,
		"platform":     view.Task.Platform,
		"action":       view.Task.Action,
		"points":       view.Task.Points,
		"verification": view.Task.Verification,
		"link":         view.Task.Link,
		"status":       view.Status,
		"started_at":   started,
		"claimed_at":   claimed,
		"completed_at": completed,
	}
}

func (r *taskRoutes) ListTasks(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	views, err := r.ts.ListTasks(c.Request.Context(), walletUser.UserID)
	if err != nil {
		log.Error("failed to list tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	response := make([]gin.H, len(views))
	for i, view := range views {
		response[i] = taskViewResponse(view)
	}

	c.JSON(http.StatusOK, response)
}

func (r *taskRoutes) StartTask(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	view, err := r.ts.StartTask(c.Request.Context(), walletUser.UserID, c.Param("task_id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		log.Error("failed to start task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start task"})
		return
	}

	c.JSON(http.StatusOK, taskViewResponse(view))
}

func (r *taskRoutes) ClaimTask(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	view, err := r.ts.ClaimTask(c.Request.Context(), walletUser.UserID, c.Param("task_id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, service.ErrTaskNotStarted):
			c.JSON(http.StatusConflict, gin.H{"error": "task not started"})
		case errors.Is(err, service.ErrTaskAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
		case errors.Is(err, service.ErrConnectionRequired):
			c.JSON(http.StatusConflict, gin.H{"error": "social connection required"})
		case errors.Is(err, service.ErrVerificationFailed):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "verification failed"})
		default:
			log.Error("failed to claim task", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to claim task"})
		}
		return
	}

	// timed tasks park in verifying until the window elapses
	status := http.StatusOK
	if view.Status == model.TaskVerifying {
		status = http.StatusAccepted
	}

	c.JSON(status, taskViewResponse(view))
}
