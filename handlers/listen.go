package handlers

import (
	"net/http"

	ws "civiclens/websocket"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Browser clients connect from arbitrary map frontends.
		return true
	},
}

// ListenReports handles GET /api/v1/reports/listen. Upgrades to a websocket
// and streams new report batches as they land.
func (h *Handlers) ListenReports(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Errorf("Failed to upgrade websocket connection: %v", err)
		return
	}

	client := ws.NewClient(h.feed.Hub(), conn)
	h.feed.Hub().Register <- client

	go client.WritePump()
	go client.ReadPump()
}
