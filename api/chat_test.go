package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giglink/giglink/api"
	"github.com/giglink/giglink/internal/chat"
	"github.com/giglink/giglink/pkg/models"
	"github.com/giglink/giglink/pkg/repository/mock"
)

func TestChatHistory(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.Messages.Stored = []models.Message{
		{ID: 1, SenderID: 1, SenderRole: models.RoleFreelancer, ReceiverID: 2, ReceiverRole: models.RoleProducer, Content: "hi"},
		{ID: 2, SenderID: 2, SenderRole: models.RoleProducer, ReceiverID: 1, ReceiverRole: models.RoleFreelancer, Content: "hello"},
		{ID: 3, SenderID: 1, SenderRole: models.RoleFreelancer, ReceiverID: 9, ReceiverRole: models.RoleProducer, Content: "other thread"},
	}
	h := api.NewChatHandler(chat.NewHub(nil), mocks.Messages, nil)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCount  int
	}{
		{"MissingPeer", "", http.StatusBadRequest, 0},
		{"BadPeerRole", "?peer_id=2&peer_role=admin", http.StatusBadRequest, 0},
		{"BothDirections", "?peer_id=2&peer_role=producer", http.StatusOK, 2},
		{"EmptyThread", "?peer_id=3&peer_role=producer", http.StatusOK, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/chat/history"+tt.query, nil)
			w := httptest.NewRecorder()
			asUser(1, models.RoleFreelancer, h.History)(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var msgs []models.Message
			if err := json.Unmarshal(w.Body.Bytes(), &msgs); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(msgs) != tt.wantCount {
				t.Fatalf("got %d messages, want %d", len(msgs), tt.wantCount)
			}
		})
	}
}
