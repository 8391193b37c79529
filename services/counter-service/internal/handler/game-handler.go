package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/services/counter-service/internal/service"
)

const (
	defaultGameLeaderboardLimit = 50
	maxGameLeaderboardLimit     = 500
)

type gameScoreResponse struct {
	Success bool              `json:"success"`
	Data    *models.GameScore `json:"data"`
}

type gameLeaderboardResponse struct {
	Success     bool               `json:"success"`
	Type        string             `json:"type"`
	Leaderboard []models.GameScore `json:"leaderboard"`
	Limit       int                `json:"limit"`
	Offset      int                `json:"offset"`
}

type recordNftRequest struct {
	Fid     int64  `json:"fid" validate:"required,gt=0"`
	NftName string `json:"nftName"`
}

func (h *Handler) SaveGameScore(w http.ResponseWriter, r *http.Request) {
	var input service.SaveScoreInput
	if !h.decode(w, r, &input) {
		return
	}

	score, err := h.services.Games.SaveScore(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, gameScoreResponse{Success: true, Data: score})
}

func (h *Handler) GetBestScore(w http.ResponseWriter, r *http.Request) {
	fid, err := pathFid(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	score, err := h.services.Games.BestScore(r.Context(), fid)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, gameScoreResponse{Success: true, Data: score})
}

func (h *Handler) GetStreak(w http.ResponseWriter, r *http.Request) {
	fid, err := pathFid(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	streak, err := h.services.Games.Streak(r.Context(), fid)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.Success(w, streak)
}

func (h *Handler) GetGameDataByAddress(w http.ResponseWriter, r *http.Request) {
	score, err := h.services.Games.GameDataByAddress(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, gameScoreResponse{Success: true, Data: score})
}

// GetGameLeaderboard serves the season, all-time-high and mixed rankings.
func (h *Handler) GetGameLeaderboard(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = "season"
	}
	limit := httpx.QueryInt(r, "limit", defaultGameLeaderboardLimit, 1, maxGameLeaderboardLimit)
	offset := httpx.QueryInt(r, "offset", 0, 0, 0)

	var (
		scores []models.GameScore
		err    error
	)
	switch kind {
	case "season":
		scores, err = h.services.Games.SeasonLeaderboard(r.Context(), offset+limit)
		if err == nil {
			scores = window(scores, limit, offset)
		}
	case "ath":
		scores, err = h.services.Games.AllTimeHighLeaderboard(r.Context(), limit, offset)
	case "mixed":
		scores, err = h.services.Games.MixedLeaderboard(r.Context(), limit, offset)
	default:
		err = errors.New(errors.CodeInvalidInput, "type must be season, ath or mixed")
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, gameLeaderboardResponse{
		Success:     true,
		Type:        kind,
		Leaderboard: scores,
		Limit:       limit,
		Offset:      offset,
	})
}

func window(scores []models.GameScore, limit, offset int) []models.GameScore {
	if offset >= len(scores) {
		return []models.GameScore{}
	}
	end := min(offset+limit, len(scores))
	return scores[offset:end]
}

func (h *Handler) GetPlayerCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.services.Games.PlayerCounts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.Success(w, counts)
}

func (h *Handler) RecordNftMint(w http.ResponseWriter, r *http.Request) {
	var req recordNftRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.services.Games.RecordNftMint(r.Context(), req.Fid, req.NftName); err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, httpx.APIResponse{Success: true, Message: "NFT mint recorded"})
}

func (h *Handler) GetNftCount(w http.ResponseWriter, r *http.Request) {
	fid, err := pathFid(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	count, err := h.services.Games.NftCount(r.Context(), fid)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.Success(w, map[string]int{"nftCount": count})
}

func (h *Handler) MigrateSeasonScores(w http.ResponseWriter, r *http.Request) {
	migrated, err := h.services.Games.MigrateSeasonScores(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	httpx.Success(w, map[string]int{"migrated": migrated})
}
