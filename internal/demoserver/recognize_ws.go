package demoserver

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
	"github.com/meetvaani/vaani/internal/speech"
	"github.com/meetvaani/vaani/pkg/utils"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 54 * time.Second
)

// connTracker keeps one live recognition connection per session. A new
// connection for a session closes the previous one.
type connTracker struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func newConnTracker() *connTracker {
	return &connTracker{conns: make(map[string]*websocket.Conn)}
}

func (t *connTracker) register(sessionID string, conn *websocket.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.conns[sessionID]; ok && old != conn {
		old.Close()
	}
	t.conns[sessionID] = conn
}

func (t *connTracker) unregister(sessionID string, conn *websocket.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Only remove the entry if it still belongs to this connection; a
	// replacement may have registered since.
	if t.conns[sessionID] == conn {
		delete(t.conns, sessionID)
	}
}

// handleRecognize speaks the gateway frame protocol: a start frame
// opens the session, audio frames carry gzip-compressed chunks, and a
// stop frame triggers recognition of the buffered utterance. The
// server answers with exactly one final frame, or one error frame.
func (s *Server) handleRecognize(w http.ResponseWriter, r *http.Request) {
	if s.recognizer == nil {
		utils.RespondError(w, http.StatusNotImplemented, "recognition not available")
		return
	}

	if s.gatewayToken != "" {
		header := r.Header.Get("Authorization")
		if strings.TrimPrefix(header, "Bearer ") != s.gatewayToken {
			utils.RespondError(w, http.StatusUnauthorized, "invalid gateway token")
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
		return nil
	})
	go s.pingLoop(ctx, conn)

	var (
		sessionID  string
		language   string
		sampleRate int
		format     string
		audio      bytes.Buffer
		started    bool
	)

	for {
		var frame speech.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Warn().Err(err).Str("session", sessionID).Msg("recognize read failed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		if err := frame.Validate(); err != nil {
			s.writeFrame(conn, speech.Frame{Type: speech.FrameError, Message: err.Error()})
			return
		}

		switch frame.Type {
		case speech.FrameStart:
			if started {
				s.writeFrame(conn, speech.Frame{Type: speech.FrameError, Message: "capture already started"})
				return
			}
			started = true
			sessionID = frame.SessionID
			language = normalizeLanguage(frame.Language)
			sampleRate = frame.SampleRate
			format = frame.Format
			if format == "" {
				format = "linear16"
			}

			s.conns.register(sessionID, conn)
			defer s.conns.unregister(sessionID, conn)

			s.log.Info().Str("session", sessionID).Str("language", language).Msg("recognition session opened")

		case speech.FrameAudio:
			if !started {
				s.writeFrame(conn, speech.Frame{Type: speech.FrameError, Message: "start frame required before audio"})
				return
			}
			chunk, err := speech.DecompressPayload(frame.Payload)
			if err != nil {
				s.writeFrame(conn, speech.Frame{Type: speech.FrameError, Message: "invalid audio payload"})
				return
			}
			audio.Write(chunk)

		case speech.FrameStop:
			if !started {
				s.writeFrame(conn, speech.Frame{Type: speech.FrameError, Message: "start frame required before stop"})
				return
			}

			result, err := s.recognizer.Recognize(ctx, speechmodel.RecognitionRequest{
				SessionID:  sessionID,
				Audio:      audio.Bytes(),
				Format:     format,
				SampleRate: sampleRate,
				Language:   language,
			})
			if err != nil {
				s.log.Warn().Err(err).Str("session", sessionID).Msg("recognition failed")
				s.writeFrame(conn, speech.Frame{Type: speech.FrameError, Message: "recognition failed: " + err.Error()})
				return
			}

			s.log.Info().
				Str("session", sessionID).
				Int("audio_bytes", audio.Len()).
				Float64("confidence", result.Confidence).
				Msg("utterance recognized")

			s.writeFrame(conn, speech.Frame{
				Type:       speech.FrameFinal,
				SessionID:  sessionID,
				Text:       result.Text,
				Confidence: result.Confidence,
			})
			return

		default:
			s.writeFrame(conn, speech.Frame{Type: speech.FrameError, Message: "unexpected frame type " + frame.Type})
			return
		}
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, frame speech.Frame) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(frame); err != nil {
		s.log.Warn().Err(err).Str("type", frame.Type).Msg("frame write failed")
	}
}

func (s *Server) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
