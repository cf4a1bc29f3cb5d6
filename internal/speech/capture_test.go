package speech_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/meetvaani/vaani/internal/speech"
	"github.com/meetvaani/vaani/internal/speech/mock"
)

// fakeSource hands out its chunks, then blocks until capture stops.
type fakeSource struct {
	chunks [][]byte
	err    error
	next   int
}

func (s *fakeSource) Read(ctx context.Context) ([]byte, error) {
	if s.next < len(s.chunks) {
		chunk := s.chunks[s.next]
		s.next++
		return chunk, nil
	}
	if s.err != nil {
		return nil, s.err
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

func quietMock() *mock.Recognizer {
	r := mock.New()
	r.SetDelay(0)
	return r
}

func TestCaptureStartStop(t *testing.T) {
	source := &fakeSource{chunks: [][]byte{{0x01, 0x02}, {0x03}}}
	capture := speech.NewCapture(quietMock(), source, nil)

	if capture.Listening() {
		t.Fatal("capture should start idle")
	}
	if err := capture.Start(context.Background(), "s1", "en"); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	if !capture.Listening() {
		t.Fatal("capture should report listening after Start")
	}

	time.Sleep(20 * time.Millisecond)
	result, err := capture.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop err: %v", err)
	}
	if result.Text != "What is my account balance?" {
		t.Fatalf("unexpected transcript: %q", result.Text)
	}
	if result.SessionID != "s1" {
		t.Fatalf("unexpected session id: %q", result.SessionID)
	}
	if capture.Listening() {
		t.Fatal("capture should be idle after Stop")
	}
}

func TestCaptureRejectsDoubleStart(t *testing.T) {
	capture := speech.NewCapture(quietMock(), &fakeSource{}, nil)

	if err := capture.Start(context.Background(), "s1", "en"); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	defer capture.Stop(context.Background())

	if err := capture.Start(context.Background(), "s1", "en"); !errors.Is(err, speech.ErrAlreadyListening) {
		t.Fatalf("expected ErrAlreadyListening, got %v", err)
	}
}

func TestCaptureStopWithoutStart(t *testing.T) {
	capture := speech.NewCapture(quietMock(), &fakeSource{}, nil)
	if _, err := capture.Stop(context.Background()); !errors.Is(err, speech.ErrNotListening) {
		t.Fatalf("expected ErrNotListening, got %v", err)
	}
}

func TestCaptureSurfacesRecognizerError(t *testing.T) {
	recognizer := quietMock()
	boom := errors.New("provider down")
	recognizer.FailWith(boom)

	capture := speech.NewCapture(recognizer, &fakeSource{}, nil)
	if err := capture.Start(context.Background(), "s1", "en"); err != nil {
		t.Fatalf("Start err: %v", err)
	}

	if _, err := capture.Stop(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected recognizer error, got %v", err)
	}
	if capture.Listening() {
		t.Fatal("capture must return to idle after a failed stop")
	}
}

func TestCaptureEmptyTranscript(t *testing.T) {
	recognizer := mock.New(mock.Utterance{Text: "   "})
	recognizer.SetDelay(0)

	capture := speech.NewCapture(recognizer, &fakeSource{}, nil)
	if err := capture.Start(context.Background(), "s1", "en"); err != nil {
		t.Fatalf("Start err: %v", err)
	}

	if _, err := capture.Stop(context.Background()); !errors.Is(err, speech.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestCaptureSourceFailure(t *testing.T) {
	source := &fakeSource{err: errors.New("device unplugged")}
	capture := speech.NewCapture(quietMock(), source, nil)

	if err := capture.Start(context.Background(), "s1", "en"); err != nil {
		t.Fatalf("Start err: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	_, err := capture.Stop(context.Background())
	if err == nil || !strings.Contains(err.Error(), "audio capture failed") {
		t.Fatalf("expected capture failure, got %v", err)
	}
}
