package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/observability/metrics"
)

// CaptureOptions tunes an audio capture session.
type CaptureOptions struct {
	Provider   string
	SampleRate int
	Format     string
	Metrics    *metrics.Metrics
}

// DefaultCaptureOptions returns the options used when none are given.
func DefaultCaptureOptions() *CaptureOptions {
	return &CaptureOptions{
		Provider:   "mock",
		SampleRate: 16000,
		Format:     "linear16",
		Metrics:    metrics.DefaultMetrics,
	}
}

// Capture toggles the microphone. Start opens a session that pumps
// audio from the Source into a buffer; Stop closes the microphone and
// submits the buffered utterance to the Recognizer.
//
// Only one session can be open at a time. The audio buffer and read
// error are owned by the pump goroutine until done is closed.
type Capture struct {
	recognizer Recognizer
	source     Source
	opts       *CaptureOptions
	log        zerolog.Logger

	mu        sync.Mutex
	listening bool
	cancel    context.CancelFunc
	done      chan struct{}

	sessionID string
	language  string
	audio     []byte
	readErr   error
}

// NewCapture builds a capture controller around a recognizer and an
// audio source. A nil opts uses DefaultCaptureOptions.
func NewCapture(recognizer Recognizer, source Source, opts *CaptureOptions) *Capture {
	if opts == nil {
		opts = DefaultCaptureOptions()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.DefaultMetrics
	}

	return &Capture{
		recognizer: recognizer,
		source:     source,
		opts:       opts,
		log:        logging.WithComponent("capture"),
	}
}

// Listening reports whether a capture session is open.
func (c *Capture) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// Start opens the microphone for the given session.
func (c *Capture) Start(ctx context.Context, sessionID, language string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.listening {
		return ErrAlreadyListening
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	c.sessionID = sessionID
	c.language = language
	c.audio = nil
	c.readErr = nil
	c.listening = true

	go c.pump(runCtx)

	c.log.Info().Str("session_id", sessionID).Str("language", language).Msg("microphone open")
	return nil
}

func (c *Capture) pump(ctx context.Context) {
	defer close(c.done)

	for {
		chunk, err := c.source.Read(ctx)
		if len(chunk) > 0 {
			c.audio = append(c.audio, chunk...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				c.readErr = err
			}
			return
		}
	}
}

// Stop closes the microphone and transcribes the buffered utterance.
// An empty transcript surfaces as ErrNoSpeech.
func (c *Capture) Stop(ctx context.Context) (*speechmodel.RecognitionResult, error) {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return nil, ErrNotListening
	}
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	cancel()
	<-done

	c.mu.Lock()
	c.listening = false
	c.cancel = nil
	audio, readErr := c.audio, c.readErr
	sessionID, language := c.sessionID, c.language
	c.mu.Unlock()

	if readErr != nil && len(audio) == 0 {
		c.opts.Metrics.RecordRecognition(c.opts.Provider, readErr, 0)
		return nil, fmt.Errorf("audio capture failed: %w", readErr)
	}

	req := speechmodel.RecognitionRequest{
		SessionID:  sessionID,
		Audio:      audio,
		Format:     c.opts.Format,
		SampleRate: c.opts.SampleRate,
		Language:   language,
	}

	start := time.Now()
	result, err := c.recognizer.Recognize(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		c.opts.Metrics.RecordRecognition(c.opts.Provider, err, elapsed)
		c.log.Warn().Err(err).Str("session_id", sessionID).Msg("recognition failed")
		return nil, err
	}
	if strings.TrimSpace(result.Text) == "" {
		c.opts.Metrics.RecordRecognition(c.opts.Provider, ErrNoSpeech, elapsed)
		return nil, ErrNoSpeech
	}

	c.opts.Metrics.RecordRecognition(c.opts.Provider, nil, elapsed)
	c.log.Info().
		Str("session_id", sessionID).
		Str("provider", result.Provider).
		Float64("confidence", result.Confidence).
		Msg("utterance transcribed")
	return result, nil
}
