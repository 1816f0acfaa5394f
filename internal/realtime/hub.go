package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	readLimit  = 512 * 1024

	// Frames queued per connection before a slow client starts losing
	// events.
	sendBuffer = 256
)

// Room naming convention, joined explicitly by clients after connecting.
func ProviderRoom(providerID int64) string { return fmt.Sprintf("provider-%d", providerID) }
func UserRoom(userID int64) string         { return fmt.Sprintf("user-%d", userID) }
func ChatRoom(conversationID int64) string { return fmt.Sprintf("chat-%d", conversationID) }

const AdminRoom = "admin"

// Event is the wire format for every realtime push.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Client is one websocket connection. All frames leave through the send
// channel; the hub's writePump is the only goroutine that touches the
// underlying connection for writes, pings included.
type Client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[string]bool
}

// Hub tracks websocket connections and their room membership. Delivery
// is at-most-once: a slow client loses frames, a broken one is dropped.
type Hub struct {
	mutex   sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
	}
}

// Register wires a connection into the hub, auto-joins the user's own
// room and starts the write pump. The caller keeps ownership of reads.
func (h *Hub) Register(userID int64, conn *websocket.Conn) *Client {
	cl := &Client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		rooms:  make(map[string]bool),
	}

	h.mutex.Lock()
	h.clients[cl] = true
	h.joinLocked(cl, UserRoom(userID))
	h.mutex.Unlock()

	go h.writePump(cl)
	return cl
}

func (h *Hub) Unregister(cl *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.unregisterLocked(cl)
}

// unregisterLocked closes the send channel exactly once; the write pump
// drains it, sends the close frame and closes the socket.
func (h *Hub) unregisterLocked(cl *Client) {
	if !h.clients[cl] {
		return
	}
	for room := range cl.rooms {
		delete(h.rooms[room], cl)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.clients, cl)
	close(cl.send)
}

// Join adds the client to a room. Returns false for unknown clients.
func (h *Hub) Join(cl *Client, room string) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.clients[cl] {
		return false
	}
	h.joinLocked(cl, room)
	return true
}

func (h *Hub) joinLocked(cl *Client, room string) {
	cl.rooms[room] = true
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][cl] = true
}

func (h *Hub) Leave(cl *Client, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.clients[cl] {
		delete(cl.rooms, room)
	}
	delete(h.rooms[room], cl)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

// Emit broadcasts an event to every client in the room and reports how
// many accepted it. Sending never blocks: a client whose buffer is full
// misses the frame.
func (h *Hub) Emit(room string, event Event) int {
	payload, err := json.Marshal(event)
	if err != nil {
		return 0
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	delivered := 0
	for cl := range h.rooms[room] {
		select {
		case cl.send <- payload:
			delivered++
		default:
		}
	}
	return delivered
}

// Send queues an event for a single client, dropping it if the client
// is gone or saturated.
func (h *Hub) Send(cl *Client, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if !h.clients[cl] {
		return
	}
	select {
	case cl.send <- payload:
	default:
	}
}

// writePump owns every write on the connection. It exits when the send
// channel closes or a write fails, and closes the socket on the way
// out, which also unblocks the reader.
func (h *Hub) writePump(cl *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.Unregister(cl)
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Unregister(cl)
				return
			}
		}
	}
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for cl := range h.clients {
		h.unregisterLocked(cl)
	}
}
