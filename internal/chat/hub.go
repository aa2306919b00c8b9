// Package chat is the pub/sub core of the realtime relay. Rooms are keyed by
// role-identity; delivery is fire-and-forget to whoever is subscribed at
// publish time.
package chat

import (
	"fmt"
	"sync"

	"log/slog"

	"github.com/giglink/giglink/pkg/models"
	"github.com/google/uuid"
)

// RoomKey builds the channel name a user listens on.
func RoomKey(role models.Role, id int64) string {
	return fmt.Sprintf("%s-%d", role, id)
}

type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]chan<- []byte
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:  make(map[string]map[string]chan<- []byte),
		logger: logger,
	}
}

// Subscribe registers ch on room and returns the subscriber id used to
// unsubscribe. The channel should be buffered; a full channel drops the
// message rather than blocking the publisher.
func (h *Hub) Subscribe(room string, ch chan<- []byte) string {
	id := uuid.NewString()

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[room]
	if !ok {
		subs = make(map[string]chan<- []byte)
		h.rooms[room] = subs
	}
	subs[id] = ch

	return id
}

func (h *Hub) Unsubscribe(room, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(subs, id)
	if len(subs) == 0 {
		delete(h.rooms, room)
	}
}

// Publish delivers payload to every current subscriber of room and returns
// how many received it. A receiver that is not subscribed simply misses the
// live event; persisted history stays queryable over REST.
func (h *Hub) Publish(room string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for id, ch := range h.rooms[room] {
		select {
		case ch <- payload:
			delivered++
		default:
			h.logger.Warn("dropping message for slow subscriber", slog.String("room", room), slog.String("subscriber", id))
		}
	}

	return delivered
}
