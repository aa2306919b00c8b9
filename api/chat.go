package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/giglink/giglink/internal/chat"
	"github.com/giglink/giglink/pkg/models"
	"github.com/giglink/giglink/pkg/repository"
	"github.com/gorilla/websocket"
)

type ChatHandler struct {
	hub      *chat.Hub
	msgRepo  repository.MessageRepo
	upgrader websocket.Upgrader
}

func NewChatHandler(hub *chat.Hub, mr repository.MessageRepo, allowedOrigins []string) *ChatHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &ChatHandler{
		hub:     hub,
		msgRepo: mr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// event envelope shared by both directions of the socket
type chatEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type sendMessageData struct {
	ReceiverID   int64       `json:"receiver_id"`
	ReceiverRole models.Role `json:"receiver_role"`
	Content      string      `json:"content"`
}

// ServeWS runs one chat connection. A `join` event subscribes the caller to
// its own role-identity room; `sendMessage` persists the message and relays
// it to the receiver's room as `receiveMessage`. Delivery is fire-and-forget:
// a receiver without a live subscription only sees the message later via the
// history endpoint.
func (h *ChatHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := RoleFromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", slog.Any("err", err))
		return
	}

	send := make(chan []byte, 16)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case payload := <-send:
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	room := chat.RoomKey(role, userID)
	joined := false
	var subID string

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var ev chatEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			h.sendError(send, "malformed event")
			continue
		}

		switch ev.Event {
		case "join":
			if joined {
				continue
			}
			subID = h.hub.Subscribe(room, send)
			joined = true

		case "sendMessage":
			var data sendMessageData
			if err := json.Unmarshal(ev.Data, &data); err != nil || data.Content == "" || !data.ReceiverRole.Valid() {
				h.sendError(send, "malformed message")
				continue
			}

			msg := &models.Message{
				SenderID:     userID,
				SenderRole:   role,
				ReceiverID:   data.ReceiverID,
				ReceiverRole: data.ReceiverRole,
				Content:      data.Content,
			}
			if _, err := h.msgRepo.CreateMessage(r.Context(), msg); err != nil {
				logger.Error("persist message", slog.Any("err", err))
				h.sendError(send, "message not delivered")
				continue
			}

			payload, _ := json.Marshal(map[string]any{"event": "receiveMessage", "data": msg})
			h.hub.Publish(chat.RoomKey(data.ReceiverRole, data.ReceiverID), payload)

		default:
			h.sendError(send, "unknown event")
		}
	}

	if joined {
		h.hub.Unsubscribe(room, subID)
	}
	close(done)
	conn.Close()
}

func (h *ChatHandler) sendError(send chan<- []byte, msg string) {
	payload, _ := json.Marshal(map[string]any{"event": "error", "data": msg})
	select {
	case send <- payload:
	default:
	}
}

// History returns the persisted conversation with a peer, oldest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := RoleFromContext(r.Context())

	q := r.URL.Query()
	peerID, err := strconv.ParseInt(q.Get("peer_id"), 10, 64)
	if err != nil || peerID <= 0 {
		http.Error(w, "peer_id is required", http.StatusBadRequest)
		return
	}
	peerRole := models.Role(q.Get("peer_role"))
	if !peerRole.Valid() {
		http.Error(w, "peer_role is required", http.StatusBadRequest)
		return
	}

	limit := 100
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}

	msgs, err := h.msgRepo.ListConversation(r.Context(), role, userID, peerRole, peerID, limit)
	if err != nil {
		http.Error(w, "failed to list messages", http.StatusInternalServerError)
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	writeJSON(w, msgs, http.StatusOK)
}
