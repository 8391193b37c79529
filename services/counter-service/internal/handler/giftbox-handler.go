package handler

import (
	"net/http"

	apperrors "github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/services/counter-service/internal/service"
)

type giftBoxClaimRequest struct {
	UserAddress string `json:"userAddress"`
	Fid         int64  `json:"fid"`
}

type giftBoxStatusResponse struct {
	Success bool `json:"success"`
	*service.GiftBoxStatus
}

type giftBoxClaimResponse struct {
	*service.GiftBoxClaimResult
	Error string `json:"error,omitempty"`
}

type giftBoxStatsResponse struct {
	Success bool `json:"success"`
	*service.GiftBoxStats
}

func (h *Handler) GiftBoxStatus(w http.ResponseWriter, r *http.Request) {
	fid, err := queryFid(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status, err := h.services.GiftBoxes.Status(r.Context(), fid)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, giftBoxStatusResponse{Success: true, GiftBoxStatus: status})
}

// ClaimGiftBox answers an exhausted quota with the claim counters so the
// client can show the remaining time.
func (h *Handler) ClaimGiftBox(w http.ResponseWriter, r *http.Request) {
	var req giftBoxClaimRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.services.GiftBoxes.Claim(r.Context(), req.UserAddress, req.Fid)
	if err != nil {
		if result == nil {
			h.fail(w, r, err)
			return
		}
		status, message := apperrors.StatusOf(err)
		httpx.JSON(w, status, giftBoxClaimResponse{GiftBoxClaimResult: result, Error: message})
		return
	}

	httpx.JSON(w, http.StatusOK, giftBoxClaimResponse{GiftBoxClaimResult: result})
}

func (h *Handler) GiftBoxStats(w http.ResponseWriter, r *http.Request) {
	address, err := queryAddress(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	fid, _ := httpx.QueryInt64(r, "fid")

	stats, err := h.services.GiftBoxes.Stats(r.Context(), address, fid)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, giftBoxStatsResponse{Success: true, GiftBoxStats: stats})
}
