package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/giglink/giglink/pkg/models"
	"github.com/giglink/giglink/pkg/repository"
	"github.com/gorilla/mux"
)

type ConnectionsHandler struct {
	connRepo repository.ConnectionRepo
	userRepo repository.UserRepo
}

func NewConnectionsHandler(cr repository.ConnectionRepo, ur repository.UserRepo) *ConnectionsHandler {
	return &ConnectionsHandler{connRepo: cr, userRepo: ur}
}

type createRequestBody struct {
	ReceiverID   int64       `json:"receiver_id"`
	ReceiverRole models.Role `json:"receiver_role"`
}

// CreateRequest opens a pending connection edge from the authenticated user
// to the receiver. One request per (sender, receiver) pair.
func (h *ConnectionsHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	senderID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	senderRole, _ := RoleFromContext(r.Context())

	var req createRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.ReceiverID <= 0 || !req.ReceiverRole.Valid() {
		http.Error(w, "receiver_id and receiver_role are required", http.StatusBadRequest)
		return
	}
	if req.ReceiverID == senderID && req.ReceiverRole == senderRole {
		http.Error(w, "cannot connect to yourself", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	receiver, err := h.userRepo.GetUserByID(ctx, req.ReceiverRole, req.ReceiverID)
	if err != nil {
		http.Error(w, "failed to load receiver", http.StatusInternalServerError)
		return
	}
	if receiver == nil {
		http.Error(w, "receiver not found", http.StatusNotFound)
		return
	}

	cr := &models.ConnectionRequest{
		SenderID:     senderID,
		SenderRole:   senderRole,
		ReceiverID:   req.ReceiverID,
		ReceiverRole: req.ReceiverRole,
	}
	id, err := h.connRepo.CreateRequest(ctx, cr)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateRequest) {
			http.Error(w, "connection request already exists", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create request", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id, "status": models.ConnectionPending}, http.StatusCreated)
}

// ListIncoming returns the pending requests addressed to the authenticated
// identity, each with the sender's public profile.
func (h *ConnectionsHandler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := RoleFromContext(r.Context())

	incoming, err := h.connRepo.ListIncoming(r.Context(), role, userID)
	if err != nil {
		http.Error(w, "failed to list requests", http.StatusInternalServerError)
		return
	}
	if incoming == nil {
		incoming = []models.ConnectionRequest{}
	}

	writeJSON(w, incoming, http.StatusOK)
}

// Accept flips a pending request to accepted. Only the receiver may accept.
func (h *ConnectionsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.ConnectionAccepted)
}

// Reject marks a pending request rejected. Terminal, like accept.
func (h *ConnectionsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.ConnectionRejected)
}

func (h *ConnectionsHandler) resolve(w http.ResponseWriter, r *http.Request, status models.ConnectionStatus) {
	userID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	role, _ := RoleFromContext(r.Context())

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	cr, err := h.connRepo.GetRequestByID(ctx, id)
	if err != nil {
		http.Error(w, "failed to load request", http.StatusInternalServerError)
		return
	}
	if cr == nil {
		http.Error(w, "request not found", http.StatusNotFound)
		return
	}
	if cr.ReceiverID != userID || cr.ReceiverRole != role {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	if cr.Status != models.ConnectionPending {
		http.Error(w, "request already resolved", http.StatusConflict)
		return
	}

	if err := h.connRepo.UpdateRequestStatus(ctx, id, status); err != nil {
		http.Error(w, "failed to update request", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"id": id, "status": status}, http.StatusOK)
}
