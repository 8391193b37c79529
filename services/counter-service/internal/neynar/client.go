// Package neynar reads Farcaster profiles from the Neynar REST API.
package neynar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/devayla/base-counter/common/config"
	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/common/models"
	"github.com/devayla/base-counter/services/counter-service/internal/rotation"
	"golang.org/x/time/rate"
)

// MaxBulkFids is the largest fid list Neynar accepts in one bulk call.
const MaxBulkFids = 100

type Client struct {
	baseURL    string
	httpClient *http.Client
	keys       *rotation.Ring[string]
	limiter    *rate.Limiter
	onFailover func(index int, err error)
	logger     *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithFailoverHook is called every time a key fails and the next one is tried.
func WithFailoverHook(fn func(index int, err error)) Option {
	return func(c *Client) { c.onFailover = fn }
}

func NewClient(cfg config.NeynarConfig, log *logger.Logger, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		keys:       rotation.NewRing(cfg.APIKeys),
		limiter:    rate.NewLimiter(limit, burst),
		logger:     log.With("component", "neynar"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type bulkUsersResponse struct {
	Users []models.FarcasterUser `json:"users"`
}

// FetchUser returns the profile of a single fid.
func (c *Client) FetchUser(ctx context.Context, fid int64) (*models.FarcasterUser, error) {
	users, err := c.FetchUsers(ctx, []int64{fid})
	if err != nil {
		return nil, err
	}
	return &users[0], nil
}

// FetchUsers looks up to MaxBulkFids profiles in one call. Keys rotate per
// call; a failing key hands over to the next one.
func (c *Client) FetchUsers(ctx context.Context, fids []int64) ([]models.FarcasterUser, error) {
	if len(fids) == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "no fids requested")
	}
	if len(fids) > MaxBulkFids {
		return nil, errors.New(errors.CodeInvalidInput, fmt.Sprintf("at most %d fids per request", MaxBulkFids))
	}
	if c.keys.Len() == 0 {
		return nil, errors.New(errors.CodeMisconfigured, "Neynar API key not configured")
	}

	ids := make([]string, len(fids))
	for i, fid := range fids {
		ids[i] = strconv.FormatInt(fid, 10)
	}
	endpoint := fmt.Sprintf("%s/user/bulk/?fids=%s", c.baseURL, url.QueryEscape(strings.Join(ids, ",")))

	var users []models.FarcasterUser
	err := c.keys.Do(ctx, func(ctx context.Context, apiKey string) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return rotation.Permanent(err)
		}

		fetched, err := c.get(ctx, endpoint, apiKey)
		if err != nil {
			return err
		}
		if len(fetched) == 0 {
			return rotation.Permanent(errors.New(errors.CodeNotFound, "User not found"))
		}

		users = fetched
		return nil
	}, c.failover)

	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		c.logger.Error("Neynar lookup failed", "fids", ids, "error", err)
		return nil, errors.Wrap(err, errors.CodeExternalServiceError, "Failed to fetch user data")
	}

	return users, nil
}

func (c *Client) get(ctx context.Context, endpoint, apiKey string) ([]models.FarcasterUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, rotation.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("x-api-key", apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("neynar returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload bulkUsersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return payload.Users, nil
}

func (c *Client) failover(index int, err error) {
	c.logger.Warn("Neynar key failed, trying next", "keyIndex", index, "error", err)
	if c.onFailover != nil {
		c.onFailover(index, err)
	}
}
