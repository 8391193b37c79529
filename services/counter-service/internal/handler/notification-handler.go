package handler

import (
	"net/http"

	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/httpx"
)

// Webhook acknowledges host events once they are queued. Storage happens
// in the event subscriber.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var event commonevents.MiniAppWebhookEvent
	if !h.decode(w, r, &event) {
		return
	}

	if err := h.services.Notifications.AcceptWebhook(r.Context(), event); err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, httpx.APIResponse{Success: true})
}

func (h *Handler) GetNotificationDetails(w http.ResponseWriter, r *http.Request) {
	fid, err := pathFid(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	details, err := h.services.Notifications.Get(r.Context(), fid)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.Success(w, details)
}
