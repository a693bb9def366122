package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/teamboard/internal/api/shared"
	"github.com/phrazzld/teamboard/internal/domain"
	"github.com/phrazzld/teamboard/internal/platform/logger"
	"github.com/phrazzld/teamboard/internal/service"
)

// MaxNotificationLimit caps the limit query parameter.
const MaxNotificationLimit = 200

// Streamer serves a live stream of one recipient's notifications.
type Streamer interface {
	Stream(w http.ResponseWriter, r *http.Request, recipient string)
}

// NotificationHandler handles the caller's notification feed.
type NotificationHandler struct {
	notifications service.NotificationService
	streamer      Streamer
	logger        *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler. streamer may be
// nil, in which case the stream endpoint answers 501.
func NewNotificationHandler(
	notifications service.NotificationService,
	streamer Streamer,
	logger *slog.Logger,
) *NotificationHandler {
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil for NotificationHandler")
	}
	return &NotificationHandler{
		notifications: notifications,
		streamer:      streamer,
		logger:        logger.With(slog.String("component", "notification_handler")),
	}
}

// List handles GET /api/notifications?limit=.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit", service.DefaultNotificationLimit)
	if !ok {
		return
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	list, err := h.notifications.List(r.Context(), s.Actor.EmployeeID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load notifications")
		return
	}
	unread, err := h.notifications.UnreadCount(r.Context(), s.Actor.EmployeeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load notifications")
		return
	}
	if list == nil {
		list = []domain.Notification{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, NotificationListResponse{Notifications: list, Unread: unread})
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	n, err := h.notifications.UnreadCount(r.Context(), s.Actor.EmployeeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to count notifications")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UnreadCountResponse{Count: n})
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(r.Context(), s.Actor.EmployeeID, id); err != nil {
		HandleAPIError(w, r, err, "Failed to update notification")
		return
	}
	shared.RespondNoContent(w)
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	n, err := h.notifications.MarkAllRead(r.Context(), s.Actor.EmployeeID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update notifications")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, MarkAllReadResponse{Updated: n})
}

// Stream handles GET /api/notifications/stream as server-sent events.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	if h.streamer == nil {
		shared.RespondWithError(w, r, http.StatusNotImplemented, "Live notifications are not enabled")
		return
	}
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Debug("notification stream opened")
	h.streamer.Stream(w, r, s.Actor.EmployeeID)
	log.Debug("notification stream closed")
}
