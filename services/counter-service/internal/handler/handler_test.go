package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devayla/base-counter/common/config"
	commonevents "github.com/devayla/base-counter/common/events"
	"github.com/devayla/base-counter/common/httpx"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	countererrors "github.com/devayla/base-counter/services/counter-service/internal/errors"
	"github.com/devayla/base-counter/services/counter-service/internal/pinata"
	"github.com/devayla/base-counter/services/counter-service/internal/service"
)

const adminSecret = "admin-secret"

type stubSignatures struct {
	service.SignatureService
	result  *service.SignatureResult
	err     error
	calls   int
	address string
}

func (s *stubSignatures) GenerateCounterSignature(_ context.Context, address string, _ int64) (*service.SignatureResult, error) {
	s.calls++
	s.address = address
	return s.result, s.err
}

type stubLeaderboard struct {
	service.LeaderboardService
	limit int
}

func (s *stubLeaderboard) GetLeaderboard(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	s.limit = limit
	return []models.LeaderboardEntry{{Fid: 1, Username: "alice", TotalIncrements: 10}}, nil
}

type stubGiftBoxes struct {
	service.GiftBoxService
	result *service.GiftBoxClaimResult
	err    error
}

func (s *stubGiftBoxes) Claim(context.Context, string, int64) (*service.GiftBoxClaimResult, error) {
	return s.result, s.err
}

type stubAuth struct {
	service.AuthService
	enabled bool
	err     error
	calls   int
	ip      string
}

func (s *stubAuth) Enabled() bool { return s.enabled }

func (s *stubAuth) Verify(_ context.Context, _, _, ip string) error {
	s.calls++
	s.ip = ip
	return s.err
}

type stubIPFS struct {
	service.IPFSService
	name    string
	content []byte
}

func (s *stubIPFS) UploadImage(_ context.Context, name string, content []byte) (*pinata.UploadResult, error) {
	s.name = name
	s.content = content
	return &pinata.UploadResult{CID: "bafy123", IpfsURL: "https://gateway.pinata.cloud/ipfs/bafy123"}, nil
}

type stubNotifications struct {
	service.NotificationService
	accepted []commonevents.MiniAppWebhookEvent
}

func (s *stubNotifications) AcceptWebhook(_ context.Context, event commonevents.MiniAppWebhookEvent) error {
	s.accepted = append(s.accepted, event)
	return nil
}

type stubFaucet struct {
	service.FaucetService
}

func (s *stubFaucet) WalletStats(context.Context) ([]models.WalletUsage, error) {
	return []models.WalletUsage{}, nil
}

type testServer struct {
	router        http.Handler
	signatures    *stubSignatures
	leaderboard   *stubLeaderboard
	giftBoxes     *stubGiftBoxes
	auth          *stubAuth
	ipfs          *stubIPFS
	notifications *stubNotifications
}

type testServerOptions struct {
	maxUploadBytes int64
	trustedProxies httpx.TrustedProxies
}

func newTestServer(checks map[string]HealthCheck) *testServer {
	return newTestServerWith(checks, testServerOptions{maxUploadBytes: 1024})
}

func newTestServerWith(checks map[string]HealthCheck, opts testServerOptions) *testServer {
	ts := &testServer{
		signatures:    &stubSignatures{},
		leaderboard:   &stubLeaderboard{},
		giftBoxes:     &stubGiftBoxes{},
		auth:          &stubAuth{},
		ipfs:          &stubIPFS{},
		notifications: &stubNotifications{},
	}

	h := NewHandler(Services{
		Signatures:    ts.signatures,
		Leaderboard:   ts.leaderboard,
		GiftBoxes:     ts.giftBoxes,
		IPFS:          ts.ipfs,
		Faucet:        &stubFaucet{},
		Auth:          ts.auth,
		Notifications: ts.notifications,
	}, config.AppConfig{
		URL:         "https://counter.example",
		Name:        "Base Counter",
		ButtonTitle: "Pull the Lever",
		AccountAssociation: config.AccountAssociation{
			Header: "h", Payload: "p", Signature: "s",
		},
	}, opts.maxUploadBytes, logger.Nop())

	ts.router = NewRouter(RouterConfig{
		Handler:        h,
		Admin:          NewAdminAuth(adminSecret, "", logger.Nop()),
		HealthChecks:   checks,
		TrustedProxies: opts.trustedProxies,
		Logger:         logger.Nop(),
	})
	return ts
}

func (ts *testServer) do(req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	body := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestGenerateSignatureFlattensResult(t *testing.T) {
	ts := newTestServer(nil)
	ts.signatures.result = &service.SignatureResult{
		Signature:    "0xsig",
		TokenAddress: "0xtoken",
		Amount:       0.0015,
		AmountInWei:  "1500",
	}

	req := httptest.NewRequest(http.MethodPost, "/api/counter/generate-signature",
		strings.NewReader(`{"userAddress":"0xabc","fid":7}`))
	rec, body := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "0xsig", body["signature"])
	assert.Equal(t, "1500", body["amountInWei"])
	assert.Equal(t, "0xabc", ts.signatures.address)
}

func TestGenerateSignatureRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/counter/generate-signature", strings.NewReader(`{`))
	rec, body := ts.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing userAddress or fid", body["error"])
	assert.Zero(t, ts.signatures.calls)
}

func TestLeaderboardLimitIsClamped(t *testing.T) {
	ts := newTestServer(nil)

	rec, body := ts.do(httptest.NewRequest(http.MethodGet, "/api/counter/leaderboard?limit=5000", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.MaxLeaderboardLimit, ts.leaderboard.limit)
	assert.Len(t, body["leaderboard"], 1)

	ts.do(httptest.NewRequest(http.MethodGet, "/api/counter/leaderboard?limit=abc", nil))
	assert.Equal(t, service.DefaultLeaderboardLimit, ts.leaderboard.limit)
}

func TestFusedKeyUsesForwardedAddressFromTrustedProxy(t *testing.T) {
	proxies, err := httpx.ParseTrustedProxies([]string{"192.0.2.1", "10.0.0.0/8"})
	require.NoError(t, err)
	ts := newTestServerWith(nil, testServerOptions{maxUploadBytes: 1024, trustedProxies: proxies})
	ts.auth.enabled = true
	ts.auth.err = countererrors.MissingAuthHeaders()

	req := httptest.NewRequest(http.MethodPost, "/api/counter/generate-signature",
		strings.NewReader(`{"userAddress":"0xabc","fid":7}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec, _ := ts.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "203.0.113.9", ts.auth.ip)
}

func TestClaimGiftBoxExhaustedKeepsCounters(t *testing.T) {
	ts := newTestServer(nil)
	ts.giftBoxes.result = &service.GiftBoxClaimResult{ClaimsToday: 1, RemainingClaims: 0}
	ts.giftBoxes.err = countererrors.GiftBoxLimitReached()

	req := httptest.NewRequest(http.MethodPost, "/api/gift-box/claim",
		strings.NewReader(`{"userAddress":"0xabc","fid":7}`))
	rec, body := ts.do(req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.EqualValues(t, 1, body["claimsToday"])
	assert.EqualValues(t, 0, body["remainingClaims"])
	assert.Contains(t, body["error"], "already claimed")
}

func TestFusedKeyGuardsMutatingRoutesOnly(t *testing.T) {
	ts := newTestServer(nil)
	ts.auth.enabled = true
	ts.auth.err = countererrors.MissingAuthHeaders()

	req := httptest.NewRequest(http.MethodPost, "/api/counter/generate-signature",
		strings.NewReader(`{"userAddress":"0xabc","fid":7}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	rec, _ := ts.do(req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, ts.signatures.calls)
	assert.Equal(t, "192.0.2.1", ts.auth.ip)

	rec, _ = ts.do(httptest.NewRequest(http.MethodGet, "/api/counter/leaderboard", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ts.auth.calls)
}

func TestWebhookSkipsFusedKey(t *testing.T) {
	ts := newTestServer(nil)
	ts.auth.enabled = true
	ts.auth.err = countererrors.MissingAuthHeaders()

	req := httptest.NewRequest(http.MethodPost, "/api/webhook",
		strings.NewReader(`{"event":"frame_added","fid":42}`))
	rec, _ := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, ts.notifications.accepted, 1)
	assert.EqualValues(t, 42, ts.notifications.accepted[0].Fid)
	assert.Zero(t, ts.auth.calls)
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	ts := newTestServer(nil)
	path := "/api/admin/faucet/wallets"

	rec, _ := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := IssueAdminToken(adminSecret, "", "ops", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec, _ = ts.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)

	forged, err := IssueAdminToken("other-secret", "", "ops", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec, _ = ts.do(req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	userToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "player",
		"role": "user",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(adminSecret))
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec, _ = ts.do(req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminTokenIssuerChecked(t *testing.T) {
	auth := NewAdminAuth(adminSecret, "base-counter", logger.Nop())

	token, err := IssueAdminToken(adminSecret, "someone-else", "ops", time.Hour)
	require.NoError(t, err)
	_, err = auth.parse(token)
	assert.Error(t, err)

	token, err = IssueAdminToken(adminSecret, "base-counter", "ops", time.Hour)
	require.NoError(t, err)
	claims, err := auth.parse(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims["sub"])
}

func TestManifest(t *testing.T) {
	ts := newTestServer(nil)

	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/.well-known/farcaster.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got manifest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "h", got.AccountAssociation.Header)
	assert.Equal(t, "1", got.Frame.Version)
	assert.Equal(t, "Base Counter", got.Frame.Name)
	assert.Equal(t, "https://counter.example/images/icon.jpg", got.Frame.IconURL)
	assert.Equal(t, "https://counter.example/api/webhook", got.Frame.WebhookURL)
	assert.Equal(t, "games", got.Frame.PrimaryCategory)
	assert.Empty(t, got.Frame.ScreenshotURLs)
	assert.Contains(t, rec.Body.String(), `"screenshotUrls":[]`)
}

func TestHealthReportsFailingDependency(t *testing.T) {
	ts := newTestServer(map[string]HealthCheck{
		"dynamodb": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	rec, body := ts.do(httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
	checks := body["checks"].(map[string]interface{})
	assert.Equal(t, "ok", checks["dynamodb"])
	assert.Equal(t, "connection refused", checks["redis"])
}

func TestUploadImage(t *testing.T) {
	ts := newTestServer(nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "share.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ipfs/upload-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, body := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "bafy123", body["cid"])
	assert.Equal(t, "share.png", ts.ipfs.name)
	assert.Equal(t, []byte("png-bytes"), ts.ipfs.content)
}

func TestUploadImageWithoutLimit(t *testing.T) {
	ts := newTestServerWith(nil, testServerOptions{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "share.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ipfs/upload-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, _ := ts.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte("png-bytes"), ts.ipfs.content)
}

func TestUploadImageWithoutFile(t *testing.T) {
	ts := newTestServer(nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "nothing"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ipfs/upload-image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, body := ts.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file provided", body["error"])
}

func TestGameLeaderboardRejectsUnknownType(t *testing.T) {
	ts := newTestServer(nil)

	rec, body := ts.do(httptest.NewRequest(http.MethodGet, "/api/game/leaderboard?type=weekly", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "type must be season, ath or mixed", body["error"])
}

func TestParseFids(t *testing.T) {
	fids, err := parseFids("3, 1,3,2")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, fids)

	_, err = parseFids("")
	assert.Error(t, err)

	_, err = parseFids("1,abc")
	assert.Error(t, err)

	_, err = parseFids(strings.Repeat("1,", maxBulkFids) + "1")
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	scores := []models.GameScore{{Fid: 1}, {Fid: 2}, {Fid: 3}}

	assert.Len(t, window(scores, 2, 0), 2)
	assert.Equal(t, int64(3), window(scores, 2, 2)[0].Fid)
	assert.Empty(t, window(scores, 2, 5))
}
