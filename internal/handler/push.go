package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/transitlk/notifier/internal/push"
	"github.com/transitlk/notifier/internal/store"
	ws "github.com/transitlk/notifier/internal/websocket"
)

const maxSubscribeBody = 64 << 10

// PushHandler serves the public push subscription endpoints.
type PushHandler struct {
	subs    *store.SubscriptionStore
	service *push.Service
	hub     *ws.Hub
	logger  *slog.Logger
}

func NewPushHandler(subs *store.SubscriptionStore, svc *push.Service, hub *ws.Hub, logger *slog.Logger) *PushHandler {
	return &PushHandler{subs: subs, service: svc, hub: hub, logger: logger}
}

// Subscribe handles POST /api/push/subscribe. The body may be a flat web-push
// subscription, a wrapped {subscription, userId} envelope, or a JSON-encoded
// subscription string; all are normalized before they reach the registry.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSubscribeBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid subscription payload"})
		return
	}

	sub, err := push.ParseSubscription(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid subscription payload"})
		return
	}

	stored, created, err := h.subs.Add(*sub)
	if err != nil {
		h.logger.Error("save subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to save subscription"})
		return
	}

	if created {
		h.hub.Broadcast(ws.Message{Type: ws.TypeSubscriptionAdded})
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":        "Subscription saved",
		"subscriptionId": stored.SubscriptionID,
	})
}

type unsubscribeRequest struct {
	SubscriptionID string `json:"subscriptionId"`
}

// Unsubscribe handles POST /api/push/unsubscribe. Removal is idempotent:
// unknown ids are acknowledged the same way.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SubscriptionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "subscriptionId is required"})
		return
	}

	if err := h.subs.Remove(req.SubscriptionID); err != nil {
		h.logger.Error("remove subscription", "subscription_id", req.SubscriptionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to remove subscription"})
		return
	}

	h.hub.Broadcast(ws.Message{Type: ws.TypeSubscriptionRemoved})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Subscription removed (if existed)"})
}

// VAPIDPublicKey handles GET /api/push/vapid-public-key.
func (h *PushHandler) VAPIDPublicKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.service.VAPIDPublicKey()})
}
