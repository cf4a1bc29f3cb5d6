// Package gateway provides a recognizer backed by the websocket
// recognition endpoint of the demo server or a compatible gateway.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/speech"
)

// Config tunes the gateway connection.
type Config struct {
	URL              string
	Token            string
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MaxRetries       int
	RetryDelay       time.Duration
	ChunkSize        int
}

// DefaultConfig returns the connection defaults.
func DefaultConfig() Config {
	return Config{
		URL:              "ws://localhost:8080/api/recognize",
		HandshakeTimeout: 10 * time.Second,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     10 * time.Second,
		MaxRetries:       3,
		RetryDelay:       time.Second,
		ChunkSize:        32 << 10,
	}
}

// Client implements speech.Recognizer over a websocket session. Each
// Recognize call opens a fresh connection, streams the utterance as
// gzip-compressed audio frames and waits for the single final frame.
type Client struct {
	cfg Config
	log zerolog.Logger
}

// New creates a gateway client. Zero config fields take defaults.
func New(cfg Config) *Client {
	defaults := DefaultConfig()
	if cfg.URL == "" {
		cfg.URL = defaults.URL
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaults.HandshakeTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaults.RetryDelay
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaults.ChunkSize
	}

	return &Client{cfg: cfg, log: logging.WithComponent("gateway")}
}

// Recognize streams one utterance and returns its final transcript.
func (c *Client) Recognize(ctx context.Context, req speechmodel.RecognitionRequest) (*speechmodel.RecognitionResult, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	start := speech.Frame{
		Type:       speech.FrameStart,
		SessionID:  req.SessionID,
		Language:   req.Language,
		SampleRate: req.SampleRate,
		Format:     req.Format,
	}
	if err := c.writeFrame(conn, start); err != nil {
		return nil, fmt.Errorf("send start frame: %w", err)
	}

	for offset := 0; offset < len(req.Audio); offset += c.cfg.ChunkSize {
		end := offset + c.cfg.ChunkSize
		if end > len(req.Audio) {
			end = len(req.Audio)
		}

		payload, err := speech.CompressPayload(req.Audio[offset:end])
		if err != nil {
			return nil, err
		}
		if err := c.writeFrame(conn, speech.Frame{Type: speech.FrameAudio, Payload: payload}); err != nil {
			return nil, fmt.Errorf("send audio frame: %w", err)
		}
	}

	if err := c.writeFrame(conn, speech.Frame{Type: speech.FrameStop}); err != nil {
		return nil, fmt.Errorf("send stop frame: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		var frame speech.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return nil, fmt.Errorf("read gateway frame: %w", err)
		}

		switch frame.Type {
		case speech.FrameFinal:
			return &speechmodel.RecognitionResult{
				SessionID:  req.SessionID,
				Text:       frame.Text,
				Confidence: frame.Confidence,
				Provider:   "gateway",
				CreatedAt:  time.Now().UTC(),
			}, nil
		case speech.FrameError:
			return nil, fmt.Errorf("gateway recognition failed: %s", frame.Message)
		default:
			// Ignore anything the gateway sends before the final frame.
		}
	}
}

// dial establishes a connection, retrying with a growing delay.
func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	var lastErr error

	for i := 0; i < c.cfg.MaxRetries; i++ {
		conn, err := c.connect(ctx)
		if err == nil {
			return conn, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.log.Warn().Err(err).Int("attempt", i+1).Msg("gateway dial failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(i+1) * c.cfg.RetryDelay):
		}
	}

	return nil, fmt.Errorf("failed to connect after %d retries, last error: %w", c.cfg.MaxRetries, lastErr)
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}

	header := http.Header{}
	if c.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, header)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		return nil
	})

	return conn, nil
}

func (c *Client) writeFrame(conn *websocket.Conn, frame speech.Frame) error {
	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteJSON(frame)
}
