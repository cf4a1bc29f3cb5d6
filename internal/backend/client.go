// Package backend is the typed client for the collaborating assistant backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/observability/metrics"
)

var (
	ErrEmptyQuery  = errors.New("query text is empty")
	ErrUnreachable = errors.New("backend unreachable")
)

// StatusError reports a non-success HTTP status from the backend.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.Code, e.Body)
}

// Config holds client connection settings. Zero values fall back to defaults.
type Config struct {
	BaseURL       string
	QueryTimeout  time.Duration
	TTSTimeout    time.Duration
	VisualTimeout time.Duration
	HealthTimeout time.Duration
}

// Client issues the five JSON calls of the assistant backend contract.
// Each call carries its own timeout; /api/query is never retried.
type Client struct {
	baseURL string
	http    *http.Client
	cfg     Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewClient creates a backend client for the given base URL.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 15 * time.Second
	}
	if cfg.TTSTimeout <= 0 {
		cfg.TTSTimeout = 8 * time.Second
	}
	if cfg.VisualTimeout <= 0 {
		cfg.VisualTimeout = 5 * time.Second
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 3 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{},
		cfg:     cfg,
		log:     logging.WithComponent("backend"),
		metrics: metrics.DefaultMetrics,
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Query sends one user turn and decodes the structured reply. The response is
// returned even when its status field is "error"; HTTP and transport failures
// come back as errors.
func (c *Client) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	var resp QueryResponse
	err := c.postJSON(ctx, "/api/query", req, &resp)
	c.metrics.QueryRequestLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	c.log.Debug().
		Str("intent", resp.Response.Intent).
		Float64("confidence", resp.Response.Confidence).
		Str("status", resp.Status).
		Msg("query round trip complete")

	return &resp, nil
}

// Synthesize requests remote speech for the reply text and returns raw audio.
func (c *Client) Synthesize(ctx context.Context, req TTSRequest) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("tts text is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.TTSTimeout)
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/tts", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, statusError("/api/tts", httpResp)
	}

	audio, err := io.ReadAll(io.LimitReader(httpResp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read tts audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("tts audio is empty")
	}
	return audio, nil
}

// Voices fetches the catalog of selectable voices grouped by language.
func (c *Client) Voices(ctx context.Context) (map[string][]VoiceInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/voices", nil)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, statusError("/api/voices", httpResp)
	}

	var payload VoiceListResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode voices response: %w", err)
	}
	return payload.Voices, nil
}

// GenerateVisual requests a rendered attachment for a classified intent.
func (c *Client) GenerateVisual(ctx context.Context, req VisualRequest) (*VisualResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.VisualTimeout)
	defer cancel()

	var resp VisualResponse
	if err := c.postJSON(ctx, "/api/generate-visual", req, &resp); err != nil {
		return nil, err
	}
	if resp.Image == "" {
		return nil, errors.New("visual response has no image")
	}
	return &resp, nil
}

// Health probes the liveness endpoint. A nil error means the backend is up.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer httpResp.Body.Close()
	io.Copy(io.Discard, httpResp.Body)

	if httpResp.StatusCode != http.StatusOK {
		return &StatusError{Endpoint: "/api/health", Code: httpResp.StatusCode}
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", endpoint, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return statusError(endpoint, httpResp)
	}

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func statusError(endpoint string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{
		Endpoint: endpoint,
		Code:     resp.StatusCode,
		Body:     strings.TrimSpace(string(snippet)),
	}
}
