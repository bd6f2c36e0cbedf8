// Package notifier fans committed order events out to currently-connected
// clients. Delivery is strictly best-effort: subscription state is in-memory
// only and a missed event is always recoverable by re-querying the order API.
package notifier

import (
	"sync"

	"canteen_preorder/internal/models"
)

// connBuffer bounds the per-connection event queue. A client that cannot
// drain this many events loses the overflow rather than blocking publishers.
const connBuffer = 16

// Conn is one client connection's event queue.
type Conn struct {
	events chan *models.OrderEvent
}

func NewConn() *Conn {
	return &Conn{events: make(chan *models.OrderEvent, connBuffer)}
}

// Events is drained by the transport (SSE) writer for this connection.
func (c *Conn) Events() <-chan *models.OrderEvent {
	return c.events
}

// Hub is the subscription registry: per-user channels plus one admin
// broadcast channel. A connection may be a member of both at once.
type Hub struct {
	mu     sync.RWMutex
	users  map[uint]map[*Conn]struct{}
	admins map[*Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		users:  make(map[uint]map[*Conn]struct{}),
		admins: make(map[*Conn]struct{}),
	}
}

// Subscribe associates conn with the user's channel.
func (h *Hub) Subscribe(userID uint, conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[*Conn]struct{})
	}
	h.users[userID][conn] = struct{}{}
}

// SubscribeAdmin associates conn with the admin broadcast channel.
func (h *Hub) SubscribeAdmin(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.admins[conn] = struct{}{}
}

// Unsubscribe removes conn from every channel it belongs to. Called on
// disconnect; stale connections must never keep receiving events.
func (h *Hub) Unsubscribe(conn *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, conns := range h.users {
		if _, ok := conns[conn]; ok {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.users, userID)
			}
		}
	}
	delete(h.admins, conn)
}

// Dispatch delivers the event to the owner's connections, and to the admin
// channel for new-order and cancellation events. Full connection buffers
// drop the event instead of blocking.
func (h *Hub) Dispatch(event *models.OrderEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.users[event.UserID] {
		deliver(conn, event)
	}
	if event.Name == models.EventNewOrder || event.Name == models.EventCancelled {
		for conn := range h.admins {
			deliver(conn, event)
		}
	}
}

func deliver(conn *Conn, event *models.OrderEvent) {
	select {
	case conn.events <- event:
	default:
	}
}
