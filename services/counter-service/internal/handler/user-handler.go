package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/common/models"
)

const maxBulkFids = 100

type usersResponse struct {
	Success bool                   `json:"success"`
	Users   []models.FarcasterUser `json:"users"`
}

func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	fids, err := parseFids(r.URL.Query().Get("fids"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	users, err := h.services.Profiles.GetUsers(r.Context(), fids)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, usersResponse{Success: true, Users: users})
}

// parseFids reads a comma separated fid list, dropping duplicates.
func parseFids(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New(errors.CodeInvalidInput, "fids is required")
	}

	parts := strings.Split(raw, ",")
	if len(parts) > maxBulkFids {
		return nil, errors.New(errors.CodeInvalidInput, "at most 100 fids per request")
	}

	seen := make(map[int64]struct{}, len(parts))
	fids := make([]int64, 0, len(parts))
	for _, part := range parts {
		fid, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || fid <= 0 {
			return nil, errors.New(errors.CodeInvalidInput, "invalid fid "+part)
		}
		if _, dup := seen[fid]; dup {
			continue
		}
		seen[fid] = struct{}{}
		fids = append(fids, fid)
	}
	return fids, nil
}
