package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/meetvaani/vaani/internal/backend"
	"github.com/meetvaani/vaani/internal/events"
	"github.com/meetvaani/vaani/internal/model/chat"
	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/observability/metrics"
	"github.com/meetvaani/vaani/internal/session"
	"github.com/meetvaani/vaani/internal/speech"
	"github.com/meetvaani/vaani/internal/transcript"
	"github.com/meetvaani/vaani/internal/visual"
	"github.com/meetvaani/vaani/internal/voice"
)

var (
	// ErrTurnInProgress means a previous turn is still being processed.
	ErrTurnInProgress = errors.New("a turn is already in progress")

	// ErrEmptyInput means there was nothing to submit.
	ErrEmptyInput = errors.New("empty input")

	// ErrVoiceUnavailable means no capture device was configured.
	ErrVoiceUnavailable = errors.New("voice input not configured")
)

// recognitionApologies is shown when the microphone produced nothing
// usable. Keyed by session language, English as fallback.
var recognitionApologies = map[string]string{
	"en": "Sorry, I didn't catch that. Could you try again?",
	"hi": "माफ़ कीजिए, मैं समझ नहीं पाई। कृपया फिर से कोशिश करें।",
	"ta": "மன்னிக்கவும், எனக்குப் புரியவில்லை. மீண்டும் முயற்சிக்கவும்.",
	"te": "క్షమించండి, నాకు అర్థం కాలేదు. దయచేసి మళ్లీ ప్రయత్నించండి.",
}

// backendApologies is shown when the backend query failed.
var backendApologies = map[string]string{
	"en": "Sorry, I couldn't reach the assistant service. Please try again in a moment.",
	"hi": "माफ़ कीजिए, सहायक सेवा से संपर्क नहीं हो पाया। कृपया थोड़ी देर बाद फिर से कोशिश करें।",
	"ta": "மன்னிக்கவும், உதவியாளர் சேவையை அடைய முடியவில்லை. சிறிது நேரம் கழித்து மீண்டும் முயற்சிக்கவும்.",
	"te": "క్షమించండి, సహాయక సేవను చేరుకోలేకపోయాను. దయచేసి కాసేపటి తర్వాత మళ్లీ ప్రయత్నించండి.",
}

func apologyFor(language string, apologies map[string]string) string {
	if text, ok := apologies[language]; ok {
		return text
	}
	return apologies["en"]
}

// Options wires an Engine. Transcript and Backend are required; the
// other collaborators degrade gracefully when absent.
type Options struct {
	Transcript *transcript.Store
	Backend    *backend.Client
	Speaker    *voice.Speaker
	Visual     *visual.Generator
	Capture    *speech.Capture
	Events     *events.Publisher
	Session    session.State
	Metrics    *metrics.Metrics
}

// Engine runs conversation turns. A turn appends the user message,
// queries the backend, prepares the visual and the reply audio in
// parallel, appends the agent message and finally plays the audio for
// voice-initiated turns. Exactly one turn runs at a time.
type Engine struct {
	transcript *transcript.Store
	backend    *backend.Client
	speaker    *voice.Speaker
	visual     *visual.Generator
	capture    *speech.Capture
	events     *events.Publisher
	metrics    *metrics.Metrics
	log        zerolog.Logger

	mu       sync.Mutex
	turn     TurnState
	sess     session.State
	snapshot MetricsSnapshot
	online   bool
}

// New builds an engine from its collaborators.
func New(opts Options) (*Engine, error) {
	if opts.Transcript == nil {
		return nil, errors.New("engine requires a transcript store")
	}
	if opts.Backend == nil {
		return nil, errors.New("engine requires a backend client")
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.DefaultMetrics
	}

	return &Engine{
		transcript: opts.Transcript,
		backend:    opts.Backend,
		speaker:    opts.Speaker,
		visual:     opts.Visual,
		capture:    opts.Capture,
		events:     opts.Events,
		metrics:    opts.Metrics,
		log:        logging.WithSession("engine", opts.Session.SessionID),
		turn:       TurnIdle,
		sess:       opts.Session,
	}, nil
}

// State returns the current turn state.
func (e *Engine) State() TurnState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.turn
}

// Session returns the current session context.
func (e *Engine) Session() session.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess
}

// Snapshot returns the session metrics accumulated so far.
func (e *Engine) Snapshot() MetricsSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// Online reports the last known backend reachability.
func (e *Engine) Online() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.online
}

// SetOnline records backend reachability, fed by the health poller.
func (e *Engine) SetOnline(up bool) {
	e.mu.Lock()
	e.online = up
	e.mu.Unlock()
}

// Apply folds a session event into the session context.
func (e *Engine) Apply(event session.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := session.Reduce(e.sess, event)
	if err != nil {
		return err
	}
	e.sess = next
	return nil
}

// Submit runs a typed message through a full turn. Processing failures
// surface as messages inside the transcript; Submit itself errors only
// when the input is rejected outright.
func (e *Engine) Submit(ctx context.Context, text string) error {
	return e.runTurn(ctx, text, false)
}

// ToggleListening opens the microphone, or closes it and submits the
// recognized utterance as a voice-initiated turn.
func (e *Engine) ToggleListening(ctx context.Context) error {
	if e.capture == nil {
		return ErrVoiceUnavailable
	}
	if e.capture.Listening() {
		return e.StopListening(ctx)
	}
	return e.StartListening(ctx)
}

// StartListening opens the microphone. Any reply currently being
// voiced is stopped so the speaker cannot talk over the user.
func (e *Engine) StartListening(ctx context.Context) error {
	if e.capture == nil {
		return ErrVoiceUnavailable
	}

	e.mu.Lock()
	if e.turn.Busy() {
		e.mu.Unlock()
		return ErrTurnInProgress
	}
	if e.turn == TurnListening {
		e.mu.Unlock()
		return speech.ErrAlreadyListening
	}
	sess := e.sess
	e.turn = TurnListening
	e.mu.Unlock()

	if e.speaker != nil {
		e.speaker.Stop()
	}

	if err := e.capture.Start(ctx, sess.SessionID, sess.LanguageCode); err != nil {
		e.setTurn(TurnIdle)
		return err
	}
	return nil
}

// StopListening closes the microphone and runs the transcript through
// a turn. A failed or empty recognition apologizes in the transcript
// and ends the turn.
func (e *Engine) StopListening(ctx context.Context) error {
	if e.capture == nil {
		return ErrVoiceUnavailable
	}

	result, err := e.capture.Stop(ctx)
	if err != nil {
		if errors.Is(err, speech.ErrNotListening) {
			return err
		}
		e.setTurn(TurnIdle)
		e.appendAgent(apologyFor(e.Session().LanguageCode, recognitionApologies), nil)
		e.metrics.RecordTurn("recognition_error", 0)
		e.log.Warn().Err(err).Msg("voice capture failed")
		return nil
	}

	return e.runTurn(ctx, result.Text, true)
}

func (e *Engine) runTurn(ctx context.Context, text string, voiceInitiated bool) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	e.mu.Lock()
	if e.turn.Busy() {
		e.mu.Unlock()
		return ErrTurnInProgress
	}
	e.turn = TurnSubmitting
	sess := e.sess
	e.mu.Unlock()

	started := time.Now()
	e.metrics.TurnsActive.Inc()
	defer e.metrics.TurnsActive.Dec()

	if _, err := e.transcript.Append(chat.Message{Sender: chat.SenderUser, Text: text}); err != nil {
		e.setTurn(TurnIdle)
		return err
	}

	e.setTurn(TurnAwaitingReply)

	resp, err := e.backend.Query(ctx, backend.QueryRequest{
		Query:       text,
		Language:    sess.LanguageCode,
		CustomerID:  sess.CustomerID,
		PhoneNumber: sess.PhoneNumber,
	})
	if err != nil || !resp.Succeeded() || strings.TrimSpace(resp.Response.Text) == "" {
		detail := "backend reported failure"
		if err != nil {
			detail = err.Error()
		} else if resp.Error != "" {
			detail = resp.Error
		}
		e.log.Error().Str("detail", detail).Str("query", text).Msg("turn failed")

		e.appendAgent(apologyFor(sess.LanguageCode, backendApologies), nil)
		e.metrics.RecordTurn("backend_error", time.Since(started))
		e.setTurn(TurnIdle)
		e.publish(sess, text, nil, voiceInitiated, "error")
		return nil
	}

	e.setTurn(TurnRendering)
	reply := resp.Response

	var (
		card      *chat.Visual
		utterance *voice.Utterance
	)

	g, gctx := errgroup.WithContext(ctx)
	if e.visual != nil {
		g.Go(func() error {
			card = e.visual.Render(gctx, reply.Intent, reply.Text, sess.LanguageCode)
			return nil
		})
	}
	if voiceInitiated && e.speaker != nil {
		g.Go(func() error {
			prepared, prepErr := e.speaker.Prepare(gctx, reply.Text, sess.LanguageCode, sess.SelectedVoiceID)
			if prepErr != nil {
				// The reply still renders as text.
				e.log.Warn().Err(prepErr).Msg("reply synthesis failed")
				return nil
			}
			utterance = prepared
			return nil
		})
	}
	// Both goroutines swallow their failures, the reply always lands
	// in the transcript as text.
	_ = g.Wait()

	if _, err := e.transcript.Append(chat.Message{Sender: chat.SenderAgent, Text: reply.Text, Visual: card}); err != nil {
		e.setTurn(TurnIdle)
		e.metrics.RecordTurn("transcript_error", time.Since(started))
		return err
	}

	if utterance != nil {
		e.setTurn(TurnSpeaking)
		if err := e.speaker.Play(ctx, utterance); err != nil {
			e.log.Warn().Err(err).Msg("reply playback failed")
		}
	}

	e.mu.Lock()
	e.snapshot = e.snapshot.Merge(resp.Metrics)
	total := e.snapshot.TotalQueries
	e.mu.Unlock()

	e.setTurn(TurnIdle)
	e.metrics.RecordTurn("success", time.Since(started))
	e.log.Info().
		Str("intent", reply.Intent).
		Bool("voice", voiceInitiated).
		Int("total_queries", total).
		Dur("elapsed", time.Since(started)).
		Msg("turn completed")

	e.publish(sess, text, resp, voiceInitiated, "success")
	return nil
}

// publish ships the turn event without blocking the caller.
func (e *Engine) publish(sess session.State, query string, resp *backend.QueryResponse, voiceInitiated bool, outcome string) {
	if e.events == nil {
		return
	}

	event := events.TurnEvent{
		SessionID:      sess.SessionID,
		Query:          query,
		Language:       sess.LanguageCode,
		VoiceInitiated: voiceInitiated,
		Outcome:        outcome,
		CreatedAt:      time.Now().UTC(),
	}
	if resp != nil {
		event.Intent = resp.Response.Intent
		event.Confidence = resp.Response.Confidence
		event.Containment = resp.Metrics.Containment
		event.ProcessingTimeSeconds = resp.Metrics.ProcessingTimeSeconds
		event.CostUSD = resp.Metrics.CostUSD
	}

	go func() {
		if err := e.events.Publish(context.Background(), event); err != nil {
			e.log.Debug().Err(err).Msg("turn event not published")
		}
	}()
}

func (e *Engine) appendAgent(text string, card *chat.Visual) {
	if _, err := e.transcript.Append(chat.Message{Sender: chat.SenderAgent, Text: text, Visual: card}); err != nil {
		e.log.Error().Err(err).Msg("failed to append agent message")
	}
}

// setTurn moves the turn state, logging transitions the state machine
// does not expect. The engine is the only writer, so an unexpected
// move indicates a bug rather than a race.
func (e *Engine) setTurn(next TurnState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.turn != next && !e.turn.CanMoveTo(next) {
		e.log.Warn().Str("from", e.turn.String()).Str("to", next.String()).Msg("unexpected turn transition")
	}
	e.turn = next
}
