package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/transitlk/notifier/internal/auth"
	"github.com/transitlk/notifier/internal/dispatch"
	"github.com/transitlk/notifier/internal/model"
	"github.com/transitlk/notifier/internal/store"
	ws "github.com/transitlk/notifier/internal/websocket"
)

const defaultListLimit = 50

// NotificationHandler serves the admin notification endpoints and the public
// click endpoint.
type NotificationHandler struct {
	dispatcher    *dispatch.Service
	notifications *store.NotificationStore
	hub           *ws.Hub
	logger        *slog.Logger
}

func NewNotificationHandler(dispatcher *dispatch.Service, notifications *store.NotificationStore, hub *ws.Hub, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		dispatcher:    dispatcher,
		notifications: notifications,
		hub:           hub,
		logger:        logger,
	}
}

type sendRequest struct {
	Title          string `json:"title"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	MessageType    string `json:"messageType"`
	TargetAudience string `json:"targetAudience"`
	Province       string `json:"province"`
	City           string `json:"city"`
	Route          string `json:"route"`
}

// Send handles POST /api/notifications/send.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
		return
	}

	if req.Title == "" || req.Subject == "" || req.Body == "" || req.MessageType == "" || req.TargetAudience == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Missing required fields: title, subject, body, messageType, and targetAudience are required",
		})
		return
	}
	if !model.ValidMessageType(req.MessageType) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Invalid messageType. Must be one of: info, warning, critical, maintenance",
		})
		return
	}
	if !model.ValidAudience(req.TargetAudience) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Invalid targetAudience. Must be one of: all, passengers, conductors, mot_officers, fleet_operators",
		})
		return
	}

	n, err := h.dispatcher.CreateAndDispatch(r.Context(), dispatch.Request{
		AdminID:        auth.UserID(r.Context()),
		Title:          req.Title,
		Subject:        req.Subject,
		Body:           req.Body,
		MessageType:    req.MessageType,
		TargetAudience: req.TargetAudience,
		Province:       req.Province,
		City:           req.City,
		Route:          req.Route,
	})
	if err != nil {
		if errors.Is(err, dispatch.ErrNoRecipients) {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"message":        "No subscriptions found matching the target criteria",
				"notificationId": n.NotificationID,
			})
			return
		}
		h.logger.Error("dispatch notification", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to send notification"})
		return
	}

	h.hub.Broadcast(ws.Message{
		Type:           ws.TypeNotificationDispatched,
		NotificationID: n.NotificationID,
		Extra: map[string]any{
			"totalSent":  n.Stats.TotalSent,
			"successful": n.Stats.Successful,
			"failed":     n.Stats.Failed,
		},
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Notification sent successfully",
		"notificationId": n.NotificationID,
		"stats":          n.Stats,
	})
}

type clickRequest struct {
	NotificationID string `json:"notificationId"`
}

// Click handles POST /api/notifications/click.
func (h *NotificationHandler) Click(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NotificationID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "notificationId is required"})
		return
	}

	if err := h.notifications.IncrementClick(req.NotificationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Notification not found"})
			return
		}
		h.logger.Error("record click", "notification_id", req.NotificationID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to record notification click"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Notification click recorded successfully"})
}

// Details handles GET /api/notifications/{id}.
func (h *NotificationHandler) Details(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	n, err := h.notifications.Get(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Notification not found"})
			return
		}
		h.logger.Error("get notification", "notification_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to get notification details"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"notification": n})
}

// List handles GET /api/notifications?limit=N.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}

	summaries, err := h.notifications.ListRecent(limit)
	if err != nil {
		h.logger.Error("list notifications", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "Failed to list notifications"})
		return
	}
	if summaries == nil {
		summaries = []model.NotificationSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"notifications": summaries})
}
