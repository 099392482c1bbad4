package live

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"wayfare/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// One room per trip: every planner view with the trip open receives each
// committed change set and can refetch the listed records.

type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	TripID string
}

type broadcastMsg struct {
	TripID string
	Data   []byte
}

type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMsg
	quit       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastMsg),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.TripID] == nil {
				h.rooms[c.TripID] = make(map[*Client]bool)
			}
			h.rooms[c.TripID][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			// the broadcast slow-client branch may already have dropped this
			// client and closed Send; only close for current members
			if conns := h.rooms[c.TripID]; conns != nil {
				if _, ok := conns[c]; ok {
					delete(conns, c)
					close(c.Send)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.TripID] {
				select {
				case c.Send <- m.Data:
				default:
					close(c.Send)
					delete(h.rooms[m.TripID], c)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for room, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and closes every client send channel.
func (h *Hub) Stop() {
	close(h.quit)
}

// syncPayload is what subscribers receive per committed operation: the ids of
// every record that changed, so clients refetch rather than patch.
type syncPayload struct {
	Action              string   `json:"action"`
	TripID              string   `json:"tripid"`
	DayPlanIDs          []string `json:"dayplanIds,omitempty"`
	PlaceIDs            []string `json:"placeIds,omitempty"`
	TransportIDs        []string `json:"transportIds,omitempty"`
	DeletedDayPlanIDs   []string `json:"deletedDayplanIds,omitempty"`
	DeletedPlaceIDs     []string `json:"deletedPlaceIds,omitempty"`
	DeletedTransportIDs []string `json:"deletedTransportIds,omitempty"`
	Timestamp           int64    `json:"timestamp"`
}

// BroadcastChange fans a committed change set out to the trip's room.
func (h *Hub) BroadcastChange(cs models.ChangeSet) {
	payload := syncPayload{
		Action:              "sync",
		TripID:              cs.TripID,
		DeletedDayPlanIDs:   cs.DeletedDayPlanIDs,
		DeletedPlaceIDs:     cs.DeletedPlaceIDs,
		DeletedTransportIDs: cs.DeletedTransportIDs,
		Timestamp:           time.Now().Unix(),
	}
	for _, dp := range cs.DayPlans {
		payload.DayPlanIDs = append(payload.DayPlanIDs, dp.DayPlanID)
	}
	for _, p := range cs.Places {
		payload.PlaceIDs = append(payload.PlaceIDs, p.PlaceID)
	}
	for _, t := range cs.Transports {
		payload.TransportIDs = append(payload.TransportIDs, t.TransportID)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Println("broadcast marshal:", err)
		return
	}
	h.broadcast <- broadcastMsg{TripID: cs.TripID, Data: data}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// WebSocketHandler upgrades GET /ws/trip/:tripid into a room subscription.
func WebSocketHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		tripID := ps.ByName("tripid")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}
		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 256),
			TripID: tripID,
		}

		hub.register <- client
		go writePump(client)
		go readPump(client, hub)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// readPump only watches for the peer going away; subscribers do not send.
func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}
