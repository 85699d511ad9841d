package sync

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the graph UI may be served from another origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades GET /ws and keeps the client subscribed until it
// disconnects or stops answering pings.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[ws] upgrade: %v", err)
			return
		}

		_ = ws.WriteMessage(websocket.TextMessage, welcome("websocket", hub.Stats()))
		hub.AddWS(ws)
		log.Printf("[ws] client connected from %s", c.ClientIP())

		ws.SetReadLimit(4096)
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})

		done := make(chan struct{})
		go keepAlive(ws, done)

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}
		close(done)

		hub.RemoveWS(ws)
		log.Printf("[ws] client %s disconnected", c.ClientIP())
	}
}

// WriteControl may run alongside BroadcastJSON writes.
func keepAlive(ws *websocket.Conn, done <-chan struct{}) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
