package ws

import (
	"log"
	"sync"

	"github.com/purushottamsingh1141/code-box/internal/presence"
	"github.com/purushottamsingh1141/code-box/internal/protocol"
)

// Hub owns all connection, subscription, and presence state. Every inbound
// event is processed to completion by the single Run goroutine before the
// next one, so broadcasts within a room are observed in processing order.
type Hub struct {
	// All registered connections, joined or not
	clients map[*Client]bool

	// Room subscribers by room ID
	rooms map[string]map[*Client]bool

	// Room membership by user name
	presence *presence.Store

	// Parsed events from client read pumps
	inbound chan inbound

	// Register requests from new connections
	register chan *Client

	// Unregister requests on disconnect
	unregister chan *Client

	mu sync.RWMutex
}

type inbound struct {
	client *Client
	event  protocol.Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		presence:   presence.NewStore(),
		inbound:    make(chan inbound),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()

			log.Printf("Client %s connected (total: %d)", client.id, clientCount)

		case client := <-h.unregister:
			h.mu.Lock()
			_, ok := h.clients[client]
			if ok {
				delete(h.clients, client)
			}
			clientCount := len(h.clients)
			h.mu.Unlock()

			if ok {
				h.leave(client)
				h.closeSend(client)
				log.Printf("Client %s disconnected (total: %d)", client.id, clientCount)
			}

		case msg := <-h.inbound:
			h.dispatch(msg.client, msg.event)
		}
	}
}

// dispatch routes one client event. Everything except join is a silent
// no-op while the connection has not joined a room.
func (h *Hub) dispatch(c *Client, ev protocol.Event) {
	switch ev.Event {
	case protocol.EventJoin:
		h.join(c, ev.RoomID, ev.UserName)

	case protocol.EventCodeChange:
		if c.room == "" {
			return
		}
		h.broadcast(c.room, protocol.Event{
			Event: protocol.EventCodeUpdate,
			Code:  ev.Code,
		}, c)

	case protocol.EventTyping:
		if c.room == "" {
			return
		}
		h.broadcast(c.room, protocol.Event{
			Event:    protocol.EventUserTyping,
			UserName: c.user,
		}, c)

	case protocol.EventLanguageChange:
		if c.room == "" {
			return
		}
		// Everyone converges on the selected language, sender included
		h.broadcast(c.room, protocol.Event{
			Event:    protocol.EventLanguageUpdate,
			Language: ev.Language,
		}, nil)

	case protocol.EventCompileOutput:
		if c.room == "" {
			return
		}
		h.broadcast(c.room, protocol.Event{
			Event:  protocol.EventReceiveOutput,
			Output: ev.Output,
		}, c)

	case protocol.EventLeaveRoom:
		h.leave(c)

	default:
		log.Printf("Client %s sent unknown event %q", c.id, ev.Event)
	}
}

// join moves the connection into a room, leaving its current room first.
// The leave broadcast to the old room always precedes the join broadcast
// to the new one.
func (h *Hub) join(c *Client, roomID, userName string) {
	if c.room != "" {
		h.leave(c)
	}

	c.room = roomID
	c.user = userName

	h.mu.Lock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
	h.mu.Unlock()

	h.presence.AddMember(roomID, userName)

	h.broadcast(roomID, protocol.Event{
		Event: protocol.EventUserJoined,
		Users: h.presence.ListMembers(roomID),
	}, nil)

	log.Printf("Client %s joined room %s as %q", c.id, roomID, userName)
}

// leave removes the connection's membership and subscription, then tells
// the remaining subscribers who is left. No-op for unjoined connections.
func (h *Hub) leave(c *Client) {
	if c.room == "" {
		return
	}

	roomID, userName := c.room, c.user
	c.room = ""
	c.user = ""

	h.presence.RemoveMember(roomID, userName)

	h.mu.Lock()
	if subscribers, ok := h.rooms[roomID]; ok {
		delete(subscribers, c)
		if len(subscribers) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()

	h.broadcast(roomID, protocol.Event{
		Event: protocol.EventUserJoined,
		Users: h.presence.ListMembers(roomID),
	}, nil)

	log.Printf("Client %s left room %s", c.id, roomID)
}

// broadcast sends an event to every subscriber of a room, skipping
// exclude when set. A subscriber with a full send buffer is dropped
// rather than allowed to block the room.
func (h *Hub) broadcast(roomID string, ev protocol.Event, exclude *Client) {
	data := protocol.Encode(ev)

	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.rooms[roomID]
	if !ok {
		return
	}
	for client := range subscribers {
		if client == exclude || client.closed {
			continue
		}
		select {
		case client.send <- data:
		default:
			client.closed = true
			close(client.send)
			delete(subscribers, client)
			log.Printf("Client %s dropped (send buffer full)", client.id)
		}
	}
}

func (h *Hub) closeSend(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// GetRoomCount returns the number of rooms with at least one subscriber.
func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetClientCount returns the number of open connections.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
