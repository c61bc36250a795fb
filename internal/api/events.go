package api

import (
	"net/http"
	"time"

	"bountyhunter/internal/service"
	"bountyhunter/pkg/auth"
	"bountyhunter/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

type eventRoutes struct {
	hub *service.EventHub
	a   *auth.WalletAuth
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const pingPeriod = 30 * time.Second

func NewEventRoutes(handler *gin.RouterGroup, hub *service.EventHub, a *auth.WalletAuth) {
	r := &eventRoutes{hub: hub, a: a}
	h := handler.Group("/events")
	h.Use(a.WalletAuthMiddleware())
	{
		h.GET("/ws", r.Subscribe)
	}
}

// Subscribe upgrades the connection and streams the session user's events
// until the client goes away.
func (r *eventRoutes) Subscribe(c *gin.Context) {
	log := logger.Logger()

	walletUser, ok := auth.CurrentUser(c)
	if !ok {
		log.Error("wallet user data not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	events := r.hub.Subscribe(walletUser.UserID)
	defer r.hub.Unsubscribe(walletUser.UserID, events)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}

			payload, err := json.Marshal(event)
			if err != nil {
				log.Error("failed to marshal event", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Info("websocket write failed, dropping subscriber",
					zap.Int64("user_id", walletUser.UserID),
					zap.Error(err))
				return
			}

		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}
