// Package pinata pins files to IPFS through the Pinata pinning API.
package pinata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/devayla/base-counter/common/config"
	"github.com/devayla/base-counter/common/errors"
	"github.com/devayla/base-counter/common/logger"
	"github.com/devayla/base-counter/services/counter-service/internal/rotation"
)

type Client struct {
	baseURL    string
	gateway    string
	httpClient *http.Client
	creds      *rotation.Ring[config.PinataCredential]
	onFailover func(index int, err error)
	logger     *logger.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithFailoverHook(fn func(index int, err error)) Option {
	return func(c *Client) { c.onFailover = fn }
}

type UploadResult struct {
	CID     string `json:"cid"`
	IpfsURL string `json:"ipfsUrl"`
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func NewClient(cfg config.PinataConfig, log *logger.Logger, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	gateway := strings.TrimSuffix(strings.TrimPrefix(cfg.Gateway, "https://"), "/")
	if gateway == "" {
		gateway = "gateway.pinata.cloud"
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		gateway:    gateway,
		httpClient: &http.Client{Timeout: timeout},
		creds:      rotation.NewRing(cfg.Credentials),
		logger:     log.With("component", "pinata"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GatewayURL is the public URL of a pinned CID.
func (c *Client) GatewayURL(cid string) string {
	return fmt.Sprintf("https://%s/ipfs/%s", c.gateway, cid)
}

// Upload pins content under name. Credential pairs are tried in rotation
// until one succeeds.
func (c *Client) Upload(ctx context.Context, name string, content []byte) (*UploadResult, error) {
	if c.creds.Len() == 0 {
		return nil, errors.New(errors.CodeMisconfigured, "No Pinata credentials configured")
	}

	var cid string
	err := c.creds.Do(ctx, func(ctx context.Context, cred config.PinataCredential) error {
		hash, err := c.pin(ctx, cred, name, content)
		if err != nil {
			return err
		}
		cid = hash
		return nil
	}, c.failover)

	if err != nil {
		c.logger.Error("All Pinata credentials failed", "name", name, "error", err)
		return nil, errors.Wrap(err, errors.CodeInternalServer, fmt.Sprintf("Failed to upload image: %v", err))
	}

	c.logger.Info("Image pinned", "name", name, "cid", cid)

	return &UploadResult{CID: cid, IpfsURL: c.GatewayURL(cid)}, nil
}

func (c *Client) pin(ctx context.Context, cred config.PinataCredential, name string, content []byte) (string, error) {
	body, contentType, err := multipartBody(name, content)
	if err != nil {
		return "", rotation.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/pinning/pinFileToIPFS", body)
	if err != nil {
		return "", rotation.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("pinata_api_key", cred.APIKey)
	req.Header.Set("pinata_secret_api_key", cred.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("pinata returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var payload pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode pin response: %w", err)
	}
	if payload.IpfsHash == "" {
		return "", fmt.Errorf("pin response without IpfsHash")
	}

	return payload.IpfsHash, nil
}

func multipartBody(name string, content []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}

	metadata, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("pinataMetadata", string(metadata)); err != nil {
		return nil, "", fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, writer.FormDataContentType(), nil
}

func (c *Client) failover(index int, err error) {
	c.logger.Warn("Pinata credential failed, trying next", "credentialIndex", index+1, "error", err)
	if c.onFailover != nil {
		c.onFailover(index, err)
	}
}
