package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/metrics"
)

type RouterConfig struct {
	Handler        *Handler
	Admin          *AdminAuth
	Feed           http.Handler
	Metrics        *metrics.Metrics
	Limiter        *httpx.IPRateLimiter
	HealthChecks   map[string]HealthCheck
	AllowedOrigins []string
	TrustedProxies httpx.TrustedProxies
	Logger         *logger.Logger
}

// NewRouter wires every REST route. Mutating /api routes go through the
// fused-key check, admin routes through the JWT check.
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handler
	router := mux.NewRouter()

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware)
		router.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)
	}
	router.HandleFunc("/health", Health(cfg.HealthChecks)).Methods(http.MethodGet)
	router.HandleFunc("/.well-known/farcaster.json", h.Manifest).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	if cfg.Limiter != nil {
		api.Use(cfg.Limiter.Middleware)
	}

	// Host clients post webhooks without the fused key.
	api.HandleFunc("/webhook", h.Webhook).Methods(http.MethodPost)

	api.HandleFunc("/counter/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	if cfg.Feed != nil {
		api.Handle("/counter/feed", cfg.Feed).Methods(http.MethodGet)
	}
	api.HandleFunc("/users/bulk", h.GetUsers).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{fid}", h.GetNotificationDetails).Methods(http.MethodGet)

	api.HandleFunc("/gift-box/status", h.GiftBoxStatus).Methods(http.MethodGet)
	api.HandleFunc("/gift-box/stats", h.GiftBoxStats).Methods(http.MethodGet)

	api.HandleFunc("/game/leaderboard", h.GetGameLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/game/players/count", h.GetPlayerCounts).Methods(http.MethodGet)
	api.HandleFunc("/game/best-score/{fid}", h.GetBestScore).Methods(http.MethodGet)
	api.HandleFunc("/game/streak/{fid}", h.GetStreak).Methods(http.MethodGet)
	api.HandleFunc("/game/nft-count/{fid}", h.GetNftCount).Methods(http.MethodGet)
	api.HandleFunc("/game/by-address/{address}", h.GetGameDataByAddress).Methods(http.MethodGet)

	api.HandleFunc("/mints/status", h.GetMintStatus).Methods(http.MethodGet)
	api.HandleFunc("/mints/history", h.GetMintHistory).Methods(http.MethodGet)
	api.HandleFunc("/mints/stats", h.GetMintStats).Methods(http.MethodGet)
	api.HandleFunc("/mints/top", h.GetTopMintScores).Methods(http.MethodGet)

	api.HandleFunc("/faucet/status", h.GetFaucetStatus).Methods(http.MethodGet)
	api.HandleFunc("/faucet/claim", h.GetFaucetClaim).Methods(http.MethodGet)
	api.HandleFunc("/follow/status", h.GetFollowStatus).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(FusedKeyAuth(h.services.Auth, cfg.TrustedProxies, cfg.Logger))
	protected.HandleFunc("/counter/generate-signature", h.GenerateSignature).Methods(http.MethodPost)
	protected.HandleFunc("/counter/update-leaderboard", h.UpdateLeaderboard).Methods(http.MethodPost)
	protected.HandleFunc("/ipfs/upload-image", h.UploadImage).Methods(http.MethodPost)
	protected.HandleFunc("/gift-box/claim", h.ClaimGiftBox).Methods(http.MethodPost)
	protected.HandleFunc("/game/score", h.SaveGameScore).Methods(http.MethodPost)
	protected.HandleFunc("/game/nft", h.RecordNftMint).Methods(http.MethodPost)
	protected.HandleFunc("/mints", h.RecordMint).Methods(http.MethodPost)
	protected.HandleFunc("/faucet/claims", h.SaveFaucetClaim).Methods(http.MethodPost)
	protected.HandleFunc("/follow", h.SaveFollow).Methods(http.MethodPost)

	if cfg.Admin != nil {
		admin := api.PathPrefix("/admin").Subrouter()
		admin.Use(cfg.Admin.Middleware)
		admin.HandleFunc("/faucet/wallets", h.GetFaucetWalletStats).Methods(http.MethodGet)
		admin.HandleFunc("/game/migrate-season", h.MigrateSeasonScores).Methods(http.MethodPost)
		admin.HandleFunc("/auth-keys/cleanup", h.CleanupAuthKeys).Methods(http.MethodPost)
	}

	var root http.Handler = router
	root = httpx.Logging(cfg.Logger)(root)
	root = httpx.Recovery(cfg.Logger)(root)
	root = httpx.CORS(cfg.AllowedOrigins)(root)
	return root
}
