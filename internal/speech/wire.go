package speech

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
)

// Frame types exchanged with the recognition gateway.
const (
	FrameStart = "start"
	FrameAudio = "audio"
	FrameStop  = "stop"
	FrameFinal = "final"
	FrameError = "error"
)

// Frame is the JSON envelope for gateway recognition traffic. Audio
// payloads travel gzip-compressed; encoding/json base64-encodes the
// bytes on the wire.
type Frame struct {
	Type       string  `json:"type"`
	SessionID  string  `json:"sessionId,omitempty"`
	Language   string  `json:"language,omitempty"`
	SampleRate int     `json:"sampleRate,omitempty"`
	Format     string  `json:"format,omitempty"`
	Payload    []byte  `json:"payload,omitempty"`
	Text       string  `json:"text,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Message    string  `json:"message,omitempty"`
}

// Validate checks the fields required for the frame's type.
func (f Frame) Validate() error {
	switch f.Type {
	case FrameStart:
		if f.SessionID == "" {
			return fmt.Errorf("start frame missing sessionId")
		}
		if f.SampleRate <= 0 {
			return fmt.Errorf("start frame has invalid sampleRate %d", f.SampleRate)
		}
	case FrameAudio:
		if len(f.Payload) == 0 {
			return fmt.Errorf("audio frame missing payload")
		}
	case FrameStop, FrameFinal, FrameError:
	default:
		return fmt.Errorf("unknown frame type %q", f.Type)
	}
	return nil
}

// CompressPayload gzips an audio chunk for transport.
func CompressPayload(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("gzip write failed: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip close failed: %w", err)
	}

	return buf.Bytes(), nil
}

// DecompressPayload reverses CompressPayload.
func DecompressPayload(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader creation failed: %w", err)
	}
	defer reader.Close()

	result, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("gzip read failed: %w", err)
	}

	return result, nil
}
