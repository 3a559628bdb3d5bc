package rest

import (
	"net/http"

	"github.com/ctrlfund/ctrlfund/internal/notification"
	"github.com/ctrlfund/ctrlfund/internal/transport"
)

// NotificationHandler serves the in-memory notification feed.
type NotificationHandler struct {
	*transport.BaseHandler
	Feed *notification.Service
}

func NewNotificationHandler(base *transport.BaseHandler, feed *notification.Service) *NotificationHandler {
	return &NotificationHandler{BaseHandler: base, Feed: feed}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": h.Feed.Recent(),
	})
}

func (h *NotificationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.Feed.Clear()
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "notifications cleared"})
}
