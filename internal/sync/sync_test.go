package sync

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"bookmap/pkg/models"
)

func TestWebsocketReceivesRegisterEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", WSHandler(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), `"transport":"websocket"`)

	require.Eventually(t, func() bool { return hub.Stats().WSClients == 1 }, time.Second, 10*time.Millisecond)

	hub.Registered(models.BookRecord{ID: "17", Title: "새 책"}, 5)

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err = ws.ReadMessage()
	require.NoError(t, err)

	var ev CatalogEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	require.Equal(t, EventRegister, ev.Type)
	require.Equal(t, "17", ev.BookID)
	require.Equal(t, "새 책", ev.Title)
	require.Equal(t, 5, ev.Total)
	require.Equal(t, 1, hub.Stats().Events)
}

func TestTCPReceivesReloadEvent(t *testing.T) {
	hub := NewHub()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer("", hub).Serve(ctx, ln) }()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	rd := bufio.NewReader(conn)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	line, err := rd.ReadString('\n')
	require.NoError(t, err)
	require.Contains(t, line, `"type":"welcome"`)

	hub.Reloaded(42)
	line, err = rd.ReadString('\n')
	require.NoError(t, err)

	var ev CatalogEvent
	require.NoError(t, json.Unmarshal([]byte(line), &ev))
	require.Equal(t, EventReload, ev.Type)
	require.Equal(t, 42, ev.Total)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
