package handler

import (
	"net/http"

	apperrors "github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/services/counter-service/internal/service"
)

type mintStatusResponse struct {
	Success bool `json:"success"`
	*service.MintStatus
	Error string `json:"error,omitempty"`
}

type mintHistoryResponse struct {
	Success bool              `json:"success"`
	Mints   []models.UserMint `json:"mints"`
}

func (h *Handler) GetMintStatus(w http.ResponseWriter, r *http.Request) {
	address, err := queryAddress(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	status, err := h.services.Mints.Status(r.Context(), address)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, mintStatusResponse{Success: true, MintStatus: status})
}

func (h *Handler) RecordMint(w http.ResponseWriter, r *http.Request) {
	var input service.RecordMintInput
	if !h.decode(w, r, &input) {
		return
	}

	status, err := h.services.Mints.RecordMint(r.Context(), input)
	if err != nil {
		if status == nil {
			h.fail(w, r, err)
			return
		}
		code, message := apperrors.StatusOf(err)
		httpx.JSON(w, code, mintStatusResponse{MintStatus: status, Error: message})
		return
	}

	httpx.JSON(w, http.StatusOK, mintStatusResponse{Success: true, MintStatus: status})
}

func (h *Handler) GetMintHistory(w http.ResponseWriter, r *http.Request) {
	address, err := queryAddress(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	limit := httpx.QueryInt(r, "limit", service.MintHistoryLimit, 1, service.MintHistoryLimit)

	mints, err := h.services.Mints.History(r.Context(), address, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, mintHistoryResponse{Success: true, Mints: mints})
}

func (h *Handler) GetMintStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.Mints.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.Success(w, stats)
}

func (h *Handler) GetTopMintScores(w http.ResponseWriter, r *http.Request) {
	limit := httpx.QueryInt(r, "limit", 10, 1, service.MintHistoryLimit)

	mints, err := h.services.Mints.TopScoresToday(r.Context(), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, mintHistoryResponse{Success: true, Mints: mints})
}
