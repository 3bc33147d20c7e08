// Package render calls the external scrolling-screenshot provider. One
// blocking attempt per request, bounded by a timeout; failures are
// classified, never retried.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/scrollcast/backend/config"
)

// LimitChecker reports whether the caller may create another recording.
// Consulted before any network call is made.
type LimitChecker interface {
	CanCreate(ctx context.Context) (bool, string, error)
}

// Params are the render parameters sent to the provider.
type Params struct {
	Format         string
	Duration       int
	Scenario       string
	ViewportWidth  int
	ViewportHeight int
}

// Result carries render metadata alongside the video bytes.
type Result struct {
	Duration int
}

// Client issues render requests against the provider /animate endpoint, or
// against a proxy that wraps the video in a base64 JSON envelope.
type Client struct {
	cfg    config.RenderConfig
	http   *http.Client
	limits LimitChecker
	logger *zap.Logger
}

// NewClient creates a render client with the configured bounded timeout.
func NewClient(cfg config.RenderConfig, limits LimitChecker, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: timeout},
		limits: limits,
		logger: logger,
	}
}

// RenderVideo fetches a scrolling video of targetURL from the provider and
// returns the raw bytes. When a proxy URL is configured the proxy variant is
// used instead. Fails fast with a usage-limit error before any network call
// when the caller's allotment is exhausted.
func (c *Client) RenderVideo(ctx context.Context, targetURL string, p Params) ([]byte, *Result, error) {
	if c.limits != nil {
		ok, reason, err := c.limits.CanCreate(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("usage check: %w", err)
		}
		if !ok {
			return nil, nil, newError(KindUsageLimit, reason, 0, nil)
		}
	}
	if c.cfg.ProxyURL != "" {
		return c.renderViaProxy(ctx, targetURL, p)
	}
	return c.renderDirect(ctx, targetURL, p)
}

// renderDirect GETs {base}/animate with the scroll scenario parameters and
// expects raw video bytes back.
func (c *Client) renderDirect(ctx context.Context, targetURL string, p Params) ([]byte, *Result, error) {
	q := url.Values{}
	q.Set("access_key", c.cfg.AccessKey)
	q.Set("url", targetURL)
	q.Set("scenario", defaultString(p.Scenario, "scroll"))
	q.Set("format", defaultString(p.Format, "mp4"))
	q.Set("duration", strconv.Itoa(defaultInt(p.Duration, 5)))
	q.Set("scroll_duration", "1500")
	q.Set("scroll_start_immediately", "true")
	q.Set("scroll_complete", "true")
	q.Set("viewport_width", strconv.Itoa(defaultInt(p.ViewportWidth, 1440)))
	q.Set("viewport_height", strconv.Itoa(defaultInt(p.ViewportHeight, 900)))
	q.Set("viewport_mobile", "false")
	q.Set("block_ads", "true")
	q.Set("block_banners_by_heuristics", "true")
	q.Set("block_chats", "true")
	q.Set("block_cookie_banners", "true")
	q.Set("timeout", "60")
	q.Set("reduced_motion", "false")

	reqURL := c.cfg.BaseURL + "/animate?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Scrollcast/"+c.cfg.ClientVersion)

	c.logger.Info("render request", zap.String("url", targetURL), zap.Int("duration", p.Duration))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, newError(KindConnectivity, "connection failed: "+err.Error(), 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, newError(KindConnectivity, "read response: "+err.Error(), 0, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, classifyStatus(resp.StatusCode, providerMessage(body))
	}
	return body, &Result{Duration: p.Duration}, nil
}

// proxyEnvelope is the JSON response from the proxy backend.
type proxyEnvelope struct {
	VideoData string `json:"video_data"`
	Duration  int    `json:"duration"`
	Message   string `json:"message"`
}

// renderViaProxy POSTs the render request to the proxy backend and decodes
// the base64 video payload from its JSON envelope.
func (c *Client) renderViaProxy(ctx context.Context, targetURL string, p Params) ([]byte, *Result, error) {
	payload := map[string]interface{}{
		"url": targetURL,
		"options": map[string]interface{}{
			"format":          defaultString(p.Format, "mp4"),
			"duration":        defaultInt(p.Duration, 5),
			"scenario":        defaultString(p.Scenario, "scroll"),
			"viewport_width":  defaultInt(p.ViewportWidth, 1440),
			"viewport_height": defaultInt(p.ViewportHeight, 900),
		},
		"license_key":    c.cfg.AccessKey,
		"site_url":       c.cfg.SiteURL,
		"client_version": c.cfg.ClientVersion,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal proxy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ProxyURL, bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Scrollcast/"+c.cfg.ClientVersion)
	req.Header.Set("X-License-Key", c.cfg.AccessKey)

	c.logger.Info("render request via proxy", zap.String("url", targetURL))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, newError(KindConnectivity, "connection failed: "+err.Error(), 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, newError(KindConnectivity, "read response: "+err.Error(), 0, err)
	}

	// Classify non-success before decoding: intermediaries can answer with
	// non-JSON bodies and the status still carries the error class.
	if resp.StatusCode != http.StatusOK {
		var envelope proxyEnvelope
		_ = json.Unmarshal(body, &envelope)
		return nil, nil, classifyStatus(resp.StatusCode, envelope.Message)
	}

	var envelope proxyEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, newError(KindUnknown, "invalid API response", resp.StatusCode, err)
	}
	if envelope.VideoData == "" {
		return nil, nil, newError(KindUnknown, "no video data received", resp.StatusCode, nil)
	}
	video, err := base64.StdEncoding.DecodeString(envelope.VideoData)
	if err != nil {
		return nil, nil, newError(KindDecode, "failed to decode video data", resp.StatusCode, err)
	}
	duration := envelope.Duration
	if duration == 0 {
		duration = defaultInt(p.Duration, 5)
	}
	return video, &Result{Duration: duration}, nil
}

// classifyStatus maps a non-success provider status to an error kind.
func classifyStatus(status int, message string) *Error {
	switch {
	case status == http.StatusBadRequest:
		return newError(KindValidation, defaultString(message, "bad request"), status, nil)
	case status == http.StatusPaymentRequired:
		return newError(KindUsageLimit, defaultString(message, "usage limit reached"), status, nil)
	case status == http.StatusForbidden:
		return newError(KindLicense, defaultString(message, "invalid license"), status, nil)
	case status >= 500:
		return newError(KindServer, defaultString(message, "server error occurred"), status, nil)
	}
	return newError(KindUnknown, defaultString(message, fmt.Sprintf("unknown API error (HTTP %d)", status)), status, nil)
}

// providerMessage extracts a message from a JSON error body, if present.
func providerMessage(body []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error_message"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	if m.Message != "" {
		return m.Message
	}
	return m.Error
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func defaultInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
