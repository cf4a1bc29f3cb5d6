// Package speech defines the speech-to-text surface of the widget.
//
// A Recognizer turns one captured utterance into exactly one final
// transcript. Interim results are never produced; callers hold the
// audio until the microphone closes and submit it in a single request.
package speech

import (
	"context"
	"errors"

	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
)

var (
	// ErrNoSpeech means the provider returned an empty transcript.
	ErrNoSpeech = errors.New("no speech detected")

	// ErrAlreadyListening means a capture session is already open.
	ErrAlreadyListening = errors.New("capture already listening")

	// ErrNotListening means Stop was called without an open session.
	ErrNotListening = errors.New("capture not listening")
)

// Recognizer transcribes a complete utterance.
type Recognizer interface {
	Recognize(ctx context.Context, req speechmodel.RecognitionRequest) (*speechmodel.RecognitionResult, error)
}

// Source supplies audio chunks while the microphone is open.
// Read returns io.EOF when the source has no more audio to give.
type Source interface {
	Read(ctx context.Context) ([]byte, error)
}
