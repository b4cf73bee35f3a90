package floor

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-reservations/utils"
)

// Event types
const (
	EventTableUpdate        = "table_update"
	EventTableGroup         = "table_group"
	EventTableUngroup       = "table_ungroup"
	EventReservationCreate  = "reservation_create"
	EventReservationRelease = "reservation_release"
	EventReservationDelete  = "reservation_delete"
	EventSweepCompleted     = "sweep_completed"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub keeps the floor-plan screens connected over websocket and pushes state
// changes to all of them.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> subject
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, subject string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = subject
}

func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(event string, data interface{}) {
	h.BroadcastMessage(Message{Event: event, Data: data})
}

// BroadcastMessage sends msg to every client. Clients that cannot be written
// to are dropped.
func (h *Hub) BroadcastMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling floor message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.Debugf("Broadcasting %s to %d clients", msg.Event, len(h.clients))
	for conn, subject := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Warnf("Dropping floor client %s: %v", subject, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
