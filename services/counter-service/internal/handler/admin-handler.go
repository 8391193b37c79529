package handler

import (
	"net/http"

	"github.com/devayla/base-counter/common/httpx"
)

func (h *Handler) CleanupAuthKeys(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.services.Auth.CleanupExpired(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.Success(w, map[string]int{"deleted": deleted})
}
