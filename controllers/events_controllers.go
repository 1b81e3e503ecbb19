package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/flavorfleet/admin-dashboard/events"
	"github.com/flavorfleet/admin-dashboard/middlewares"
)

type EventsController struct {
	hub      *events.Hub
	upgrader websocket.Upgrader
}

// NewEventsController accepts upgrades from the listed origins; "*" allows
// any origin.
func NewEventsController(hub *events.Hub, allowedOrigins []string) *EventsController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &EventsController{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Stream upgrades the request and keeps the client registered until it
// disconnects or its session ends. Incoming messages are ignored.
func (ec *EventsController) Stream(c *gin.Context) {
	ws, err := ec.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := ec.hub.RegisterClient(ws,
		c.GetString(middlewares.ContextSessionID),
		c.GetString(middlewares.ContextUsername),
		c.GetTime(middlewares.ContextExpiresAt),
	)
	defer ec.hub.UnregisterClient(client)
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}
