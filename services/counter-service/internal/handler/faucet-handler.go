package handler

import (
	"net/http"

	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/services/counter-service/internal/service"
)

type faucetStatusResponse struct {
	Success    bool `json:"success"`
	HasClaimed bool `json:"hasClaimed"`
}

type followStatusResponse struct {
	Success     bool `json:"success"`
	HasFollowed bool `json:"hasFollowed"`
}

func (h *Handler) SaveFaucetClaim(w http.ResponseWriter, r *http.Request) {
	var claim models.FaucetClaim
	if !h.decode(w, r, &claim) {
		return
	}

	if err := h.services.Faucet.SaveClaim(r.Context(), &claim); err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, httpx.APIResponse{Success: true, Message: "Faucet claim saved"})
}

func (h *Handler) GetFaucetStatus(w http.ResponseWriter, r *http.Request) {
	address, err := queryAddress(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	claimed, err := h.services.Faucet.HasClaimed(r.Context(), address)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, faucetStatusResponse{Success: true, HasClaimed: claimed})
}

func (h *Handler) GetFaucetClaim(w http.ResponseWriter, r *http.Request) {
	address, err := queryAddress(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	claim, err := h.services.Faucet.GetClaim(r.Context(), address)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.Success(w, claim)
}

func (h *Handler) GetFaucetWalletStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.Faucet.WalletStats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.Success(w, stats)
}

func (h *Handler) SaveFollow(w http.ResponseWriter, r *http.Request) {
	var input service.SaveFollowInput
	if !h.decode(w, r, &input) {
		return
	}

	if _, err := h.services.Follows.SaveFollow(r.Context(), input); err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, httpx.APIResponse{Success: true, Message: "Follow action saved"})
}

func (h *Handler) GetFollowStatus(w http.ResponseWriter, r *http.Request) {
	address, err := queryAddress(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	followed, err := h.services.Follows.HasFollowed(r.Context(), address, r.URL.Query().Get("platform"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, followStatusResponse{Success: true, HasFollowed: followed})
}
