package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/devayla/base-counter/common/config"
	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/services/counter-service/internal/service"
)

// Services are the domain services behind the REST API.
type Services struct {
	Profiles      service.ProfileService
	Signatures    service.SignatureService
	Leaderboard   service.LeaderboardService
	IPFS          service.IPFSService
	GiftBoxes     service.GiftBoxService
	Games         service.GameService
	Mints         service.MintService
	Faucet        service.FaucetService
	Follows       service.FollowService
	Auth          service.AuthService
	Notifications service.NotificationService
}

type Handler struct {
	services       Services
	app            config.AppConfig
	maxUploadBytes int64
	logger         *logger.Logger
}

func NewHandler(services Services, app config.AppConfig, maxUploadBytes int64, logger *logger.Logger) *Handler {
	return &Handler{
		services:       services,
		app:            app,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "http-handler"),
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.Fail(w, r, h.logger, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := httpx.DecodeJSON(r, dest); err != nil {
		h.fail(w, r, errors.Wrap(err, errors.CodeInvalidInput, "Invalid request body"))
		return false
	}
	return true
}

func pathFid(r *http.Request) (int64, error) {
	fid, err := strconv.ParseInt(mux.Vars(r)["fid"], 10, 64)
	if err != nil || fid <= 0 {
		return 0, errors.New(errors.CodeInvalidInput, "invalid fid")
	}
	return fid, nil
}

func queryFid(r *http.Request) (int64, error) {
	fid, ok := httpx.QueryInt64(r, "fid")
	if !ok || fid <= 0 {
		return 0, errors.New(errors.CodeInvalidInput, "fid is required")
	}
	return fid, nil
}

func queryAddress(r *http.Request) (string, error) {
	address := r.URL.Query().Get("userAddress")
	if address == "" {
		return "", errors.New(errors.CodeInvalidInput, "userAddress is required")
	}
	return address, nil
}
