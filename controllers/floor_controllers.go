package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-reservations/floor"
	"github.com/yeremiapane/table-reservations/middlewares"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FloorHandler -> websocket endpoint for live floor-plan updates
func FloorHandler(hub *floor.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject := c.GetString(middlewares.ContextSubject)
		if subject == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		hub.RegisterClient(ws, subject)

		// clients only listen, reading detects the disconnect
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.UnregisterClient(ws)
	}
}
