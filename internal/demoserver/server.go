// Package demoserver implements the assistant backend the widget talks
// to: the five JSON endpoints, the WebSocket recognition gateway and
// the Prometheus listener. Replies come from a canned multilingual
// catalog keyed by classified intent; an optional ark chat model
// rewrites them in the assistant persona.
package demoserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/meetvaani/vaani/internal/config"
	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/observability/metrics"
	"github.com/meetvaani/vaani/internal/speech"
	"github.com/meetvaani/vaani/internal/voice"
)

// Version is reported by /api/health.
const Version = "1.4.2"

// Synthesizer renders text to audio for /api/tts.
// *voice.LocalSynthesizer satisfies it; tests substitute fakes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req speechmodel.SynthesisRequest) (*speechmodel.SynthesisResult, error)
}

// Options wires a Server.
type Options struct {
	Catalog      *voice.Catalog
	Synthesizer  Synthesizer       // nil disables /api/tts
	Recognizer   speech.Recognizer // nil disables /api/recognize
	Assist       *Assist           // nil keeps replies canned
	RateLimit    config.RateLimitConfig
	GatewayToken string // when set, /api/recognize requires it
}

// Server carries the handler dependencies. One instance serves all
// routes; handlers live in the per-endpoint files of this package.
type Server struct {
	catalog      *voice.Catalog
	synth        Synthesizer
	recognizer   speech.Recognizer
	assist       *Assist
	limiter      *RateLimiter
	gatewayToken string

	upgrader  websocket.Upgrader
	conns     *connTracker
	log       zerolog.Logger
	metrics   *metrics.Metrics
	startedAt time.Time
}

// New builds a server from its collaborators.
func New(opts Options) *Server {
	rps := opts.RateLimit.RPS
	if rps <= 0 {
		rps = 10
	}
	burst := opts.RateLimit.Burst
	if burst <= 0 {
		burst = 20
	}

	return &Server{
		catalog:      opts.Catalog,
		synth:        opts.Synthesizer,
		recognizer:   opts.Recognizer,
		assist:       opts.Assist,
		limiter:      NewRateLimiter(rps, burst),
		gatewayToken: opts.GatewayToken,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		conns:     newConnTracker(),
		log:       logging.WithComponent("demoserver"),
		metrics:   metrics.DefaultMetrics,
		startedAt: time.Now(),
	}
}

// normalizeLanguage reduces a language tag to the supported set.
// Region suffixes are stripped ("en-IN" becomes "en"); anything
// unrecognized falls back to English.
func normalizeLanguage(language string) string {
	code := strings.ToLower(strings.TrimSpace(language))
	if idx := strings.IndexAny(code, "-_"); idx > 0 {
		code = code[:idx]
	}

	switch code {
	case "en", "hi", "ta", "te":
		return code
	default:
		return "en"
	}
}
