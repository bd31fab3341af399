// Package realtime delivers notification events to websocket subscribers.
// There is a single NEW_NOTIFICATION channel: every subscriber receives every
// event and filters by addressee on the client side.
package realtime

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"AE-VISA/internal/models"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// EventNewNotification is the only event name published on the channel.
	EventNewNotification = "NEW_NOTIFICATION"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 50 * time.Second
	sendBufferSize = 64
)

// Event is the wire envelope sent to subscribers.
type Event struct {
	Event        string               `json:"event"`
	Notification *models.Notification `json:"notification"`
}

// Publisher is what services depend on; the hub implements it.
type Publisher interface {
	Publish(n *models.Notification)
}

type subscriber struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans notification events out to all connected subscribers. Sends are
// non-blocking with a bounded per-subscriber buffer; overflow drops the event
// for that subscriber and counts it, rather than stalling the mutation path.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*subscriber]struct{}
	upgrader    websocket.Upgrader
	log         *logrus.Logger
	dropped     atomic.Uint64
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The channel is unpartitioned and carries no secrets beyond
			// notification text; any origin may subscribe.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

// Publish broadcasts a saved notification to every subscriber.
func (h *Hub) Publish(n *models.Notification) {
	ev := Event{Event: EventNewNotification, Notification: n}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers {
		select {
		case sub.send <- ev:
		default:
			h.dropped.Add(1)
			h.log.WithField("user_id", n.UserID).Warn("subscriber buffer full, notification dropped")
		}
	}
}

// Dropped reports how many events were dropped due to slow subscribers.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// SubscriberCount reports the number of open subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// ServeHTTP upgrades the request and pumps events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	sub := &subscriber{conn: conn, send: make(chan Event, sendBufferSize)}

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	go h.writePump(sub)
	h.readPump(sub)
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.send)
	}
	h.mu.Unlock()
}

// readPump discards client frames; its job is noticing the close.
func (h *Hub) readPump(sub *subscriber) {
	defer func() {
		h.remove(sub)
		sub.conn.Close()
	}()
	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
