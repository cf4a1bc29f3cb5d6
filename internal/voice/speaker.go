package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/meetvaani/vaani/internal/backend"
	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
	voicemodel "github.com/meetvaani/vaani/internal/model/voice"
	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/observability/metrics"
)

// Status describes what the speaker is doing right now.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusRequesting Status = "requesting"
	StatusFallback   Status = "fallback"
	StatusPlaying    Status = "playing"
)

// RemoteSynthesizer is the backend synthesis surface the speaker
// prefers. *backend.Client satisfies it.
type RemoteSynthesizer interface {
	Synthesize(ctx context.Context, req backend.TTSRequest) ([]byte, error)
}

// LocalEngine is the offline synthesis fallback.
type LocalEngine interface {
	Synthesize(ctx context.Context, req speechmodel.SynthesisRequest) (*speechmodel.SynthesisResult, error)
}

// Utterance is synthesized audio ready to play.
type Utterance struct {
	Audio  []byte
	Format string
	Mode   string // "remote" or "local"
	Voice  voicemodel.Voice
}

// SpeakerOptions tunes the speaker.
type SpeakerOptions struct {
	OnStatus func(Status)
	Metrics  *metrics.Metrics
	Speed    float32
}

// Speaker voices assistant replies. Remote synthesis is tried for each
// candidate voice in catalog order; when the backend cannot serve any
// of them the local engine takes over. Starting a new utterance stops
// whatever is currently playing, so at most one audio stream is ever
// live.
type Speaker struct {
	remote  RemoteSynthesizer
	local   LocalEngine
	player  Player
	catalog *Catalog
	opts    *SpeakerOptions
	log     zerolog.Logger

	// playMu serializes playback so at most one stream is live.
	playMu sync.Mutex

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSpeaker builds a speaker. A nil remote skips straight to the
// local engine; a nil opts uses defaults.
func NewSpeaker(remote RemoteSynthesizer, local LocalEngine, player Player, catalog *Catalog, opts *SpeakerOptions) *Speaker {
	if opts == nil {
		opts = &SpeakerOptions{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.DefaultMetrics
	}
	if opts.Speed <= 0 {
		opts.Speed = 1.0
	}

	return &Speaker{
		remote:  remote,
		local:   local,
		player:  player,
		catalog: catalog,
		opts:    opts,
		log:     logging.WithComponent("speaker"),
		status:  StatusIdle,
	}
}

// Status returns the current speaker status.
func (s *Speaker) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Speak synthesizes and plays text with the selected voice.
func (s *Speaker) Speak(ctx context.Context, text, language, voiceID string) error {
	utterance, err := s.Prepare(ctx, text, language, voiceID)
	if err != nil {
		return err
	}
	return s.Play(ctx, utterance)
}

// Prepare synthesizes text without playing it, so callers can fetch
// audio while other work is in flight and play it afterwards.
func (s *Speaker) Prepare(ctx context.Context, text, language, voiceID string) (*Utterance, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("speech text is empty")
	}

	candidates := s.catalog.Candidates(voiceID, language)

	if s.remote != nil {
		s.setStatus(StatusRequesting)

		var lastErr error
		for i, candidate := range candidates {
			audio, err := s.remote.Synthesize(ctx, backend.TTSRequest{
				Text:     text,
				Language: language,
				VoiceID:  candidate.ID,
			})
			if err == nil {
				if i > 0 {
					s.log.Info().Str("voice", candidate.ID).Msg("fallback voice succeeded")
				}
				s.opts.Metrics.RecordSpeech("remote", nil)
				return &Utterance{Audio: audio, Format: "wav", Mode: "remote", Voice: candidate}, nil
			}

			lastErr = err
			if ctx.Err() != nil {
				s.setStatus(StatusIdle)
				return nil, ctx.Err()
			}

			s.log.Warn().Err(err).Str("voice", candidate.ID).Msg("remote synthesis failed")
			if errors.Is(err, backend.ErrUnreachable) {
				// The backend is down; trying more voices cannot help.
				break
			}
		}

		s.opts.Metrics.RecordSpeech("remote", lastErr)
		s.opts.Metrics.SpeechFallbacks.Inc()
	}

	s.setStatus(StatusFallback)

	engineVoice := language
	spoken := voicemodel.Voice{ID: "local", Language: language, EngineVoice: language}
	if len(candidates) > 0 {
		spoken = candidates[0]
		if candidates[0].EngineVoice != "" {
			engineVoice = candidates[0].EngineVoice
		}
	}

	result, err := s.local.Synthesize(ctx, speechmodel.SynthesisRequest{
		Text:     text,
		Voice:    engineVoice,
		Language: language,
		Speed:    s.opts.Speed,
	})
	if err != nil {
		s.opts.Metrics.RecordSpeech("local", err)
		s.setStatus(StatusIdle)
		return nil, fmt.Errorf("local synthesis fallback failed: %w", err)
	}

	s.opts.Metrics.RecordSpeech("local", nil)
	return &Utterance{Audio: result.Audio, Format: result.Format, Mode: "local", Voice: spoken}, nil
}

// Play pronounces a prepared utterance, stopping any current playback
// first. A playback superseded by a newer one is not an error.
func (s *Speaker) Play(ctx context.Context, utterance *Utterance) error {
	s.interrupt()

	s.playMu.Lock()
	defer s.playMu.Unlock()

	playCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	s.setStatus(StatusPlaying)
	err := s.player.Play(playCtx, utterance.Audio, utterance.Format)
	s.setStatus(StatusIdle)

	s.mu.Lock()
	if s.done == done {
		s.cancel, s.done = nil, nil
	}
	s.mu.Unlock()

	close(done)
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn().Err(err).Str("mode", utterance.Mode).Msg("playback failed")
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

// Stop cancels the current playback, if any, and waits for it to end.
func (s *Speaker) Stop() {
	s.interrupt()
}

func (s *Speaker) interrupt() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *Speaker) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	cb := s.opts.OnStatus
	s.mu.Unlock()

	if cb != nil {
		cb(status)
	}
}
