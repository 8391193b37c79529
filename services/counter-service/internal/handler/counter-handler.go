package handler

import (
	"net/http"

	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/common/models"
	countererrors "github.com/devayla/base-counter/services/counter-service/internal/errors"
	"github.com/devayla/base-counter/services/counter-service/internal/service"
)

type generateSignatureRequest struct {
	UserAddress string `json:"userAddress"`
	Fid         int64  `json:"fid"`
}

type signatureResponse struct {
	Success bool `json:"success"`
	*service.SignatureResult
}

type leaderboardResponse struct {
	Success     bool                      `json:"success"`
	Leaderboard []models.LeaderboardEntry `json:"leaderboard"`
}

func (h *Handler) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	var req generateSignatureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, countererrors.MissingAddressOrFid())
		return
	}

	result, err := h.services.Signatures.GenerateCounterSignature(r.Context(), req.UserAddress, req.Fid)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, signatureResponse{Success: true, SignatureResult: result})
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := httpx.QueryInt(r, "limit", service.DefaultLeaderboardLimit, 1, service.MaxLeaderboardLimit)

	entries, err := h.services.Leaderboard.GetLeaderboard(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, leaderboardResponse{Success: true, Leaderboard: entries})
}

func (h *Handler) UpdateLeaderboard(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateLeaderboardInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		h.fail(w, r, countererrors.MissingLeaderboardFields())
		return
	}

	if _, err := h.services.Leaderboard.UpdateEntry(r.Context(), input); err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, httpx.APIResponse{Success: true})
}
