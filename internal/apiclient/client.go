// Package apiclient talks to the sweets backend. It attaches the persisted bearer token
// to every request and turns 401 responses into the process-wide unauthorized signal.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"sweetshop/internal/authsignal"
	"sweetshop/internal/credential"
	"sweetshop/internal/logging"
)

// DefaultCooldown is the minimum gap between two unauthorized signals.
const DefaultCooldown = time.Second

const maxErrorBody = 64 << 10

// Config configures a Client. BaseURL and Credentials are required.
type Config struct {
	BaseURL     string
	HTTPClient  *http.Client
	Credentials credential.Store
	Signal      authsignal.Publisher
	Cooldown    time.Duration
	// Clock overrides time.Now for the cool-down window.
	Clock  func() time.Time
	Logger logrus.FieldLogger
}

// Client performs authenticated JSON requests against the backend.
type Client struct {
	base   *url.URL
	http   *http.Client
	creds  credential.Store
	signal authsignal.Publisher
	clock  func() time.Time
	logger logrus.FieldLogger

	// mu makes the credential clear and the cool-down check one step.
	mu      sync.Mutex
	limiter *rate.Limiter
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", cfg.BaseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	cooldown := cfg.Cooldown
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	signal := cfg.Signal
	if signal == nil {
		signal = noopSignal{}
	}
	return &Client{
		base:    base,
		http:    httpClient,
		creds:   cfg.Credentials,
		signal:  signal,
		clock:   clock,
		logger:  logging.OrDiscard(cfg.Logger),
		limiter: rate.NewLimiter(rate.Every(cooldown), 1),
	}, nil
}

type noopSignal struct{}

func (noopSignal) Publish() {}

// Do sends a request with an optional JSON body and decodes a JSON response into out
// (nil discards it). path is already escaped and is sent as given. Non-2xx statuses
// come back as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	unescaped, err := url.PathUnescape(path)
	if err != nil {
		return fmt.Errorf("request path %q: %w", path, err)
	}
	u := *c.base
	u.Path = c.base.Path + unescaped
	u.RawPath = c.base.EscapedPath() + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, err := c.creds.Load()
	if err != nil {
		c.logger.WithError(err).Warn("api: read token failed, sending anonymously")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	log := c.logger.WithFields(logrus.Fields{"method": method, "path": path})
	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("api: request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	log = log.WithFields(logrus.Fields{"status": resp.StatusCode, "elapsed": time.Since(started)})

	if resp.StatusCode == http.StatusUnauthorized {
		c.rejectCredential()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		log.WithField("error", apiErr.Message).Debug("api: non-2xx response")
		return apiErr
	}
	log.Debug("api: ok")

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// rejectCredential clears the stored token and raises the unauthorized signal unless one
// was raised within the cool-down. Subscribers run after the lock is released.
func (c *Client) rejectCredential() {
	c.mu.Lock()
	if err := c.creds.Clear(); err != nil {
		c.logger.WithError(err).Warn("api: clear rejected token failed")
	}
	publish := c.limiter.AllowN(c.clock(), 1)
	c.mu.Unlock()

	if !publish {
		c.logger.Debug("api: unauthorized signal suppressed by cool-down")
		return
	}
	c.logger.Info("api: credential rejected, signalling unauthorized")
	c.signal.Publish()
}

func errorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}
