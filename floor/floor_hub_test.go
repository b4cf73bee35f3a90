package floor

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesClients(t *testing.T) {
	hub := NewHub()
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{}, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.RegisterClient(conn, "tester")
		registered <- struct{}{}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.UnregisterClient(conn)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	select {
	case <-registered:
	case <-time.After(5 * time.Second):
		t.Fatal("client was not registered")
	}
	assert.Equal(t, 1, hub.Clients())

	hub.Broadcast(EventTableUpdate, map[string]int{"number": 101})

	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg struct {
		Event string         `json:"event"`
		Data  map[string]int `json:"data"`
	}
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, EventTableUpdate, msg.Event)
	assert.Equal(t, 101, msg.Data["number"])
}

func TestBroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	hub.Broadcast(EventSweepCompleted, nil)
	assert.Equal(t, 0, hub.Clients())
}
