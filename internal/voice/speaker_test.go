package voice_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/meetvaani/vaani/internal/backend"
	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
	"github.com/meetvaani/vaani/internal/voice"
)

type fakeRemote struct {
	mu    sync.Mutex
	err   error
	audio []byte
	calls []string
}

func (f *fakeRemote) Synthesize(ctx context.Context, req backend.TTSRequest) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.VoiceID)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func (f *fakeRemote) voiceCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeLocal struct {
	err error
}

func (f *fakeLocal) Synthesize(ctx context.Context, req speechmodel.SynthesisRequest) (*speechmodel.SynthesisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &speechmodel.SynthesisResult{
		Audio:  []byte("local:" + req.Text),
		Format: "wav",
		Voice:  req.Voice,
	}, nil
}

type statusRecorder struct {
	mu       sync.Mutex
	statuses []voice.Status
}

func (r *statusRecorder) record(s voice.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *statusRecorder) seen(want voice.Status) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.statuses {
		if s == want {
			return true
		}
	}
	return false
}

type slowPlayer struct {
	delay time.Duration

	mu        sync.Mutex
	active    int
	maxActive int
}

func (p *slowPlayer) Play(ctx context.Context, audio []byte, format string) error {
	p.mu.Lock()
	p.active++
	if p.active > p.maxActive {
		p.maxActive = p.active
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.active--
		p.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.delay):
		return nil
	}
}

func mustCatalog(t *testing.T) *voice.Catalog {
	t.Helper()
	catalog, err := voice.LoadCatalog("")
	if err != nil {
		t.Fatalf("LoadCatalog err: %v", err)
	}
	return catalog
}

func TestSpeakPrefersRemote(t *testing.T) {
	remote := &fakeRemote{audio: []byte("remote-wav")}
	player := &voice.BufferPlayer{}
	recorder := &statusRecorder{}

	speaker := voice.NewSpeaker(remote, &fakeLocal{}, player, mustCatalog(t), &voice.SpeakerOptions{
		OnStatus: recorder.record,
	})

	if err := speaker.Speak(context.Background(), "Your balance is low", "en", "priya"); err != nil {
		t.Fatalf("Speak err: %v", err)
	}

	played := player.Played()
	if len(played) != 1 || !bytes.Equal(played[0], []byte("remote-wav")) {
		t.Fatalf("expected remote audio to play, got %v", played)
	}
	if calls := remote.voiceCalls(); len(calls) == 0 || calls[0] != "priya" {
		t.Fatalf("expected priya tried first, got %v", calls)
	}
	for _, want := range []voice.Status{voice.StatusRequesting, voice.StatusPlaying, voice.StatusIdle} {
		if !recorder.seen(want) {
			t.Fatalf("status %q never reported; saw %v", want, recorder.statuses)
		}
	}
	if recorder.seen(voice.StatusFallback) {
		t.Fatal("fallback status reported for a successful remote synthesis")
	}
	if speaker.Status() != voice.StatusIdle {
		t.Fatalf("speaker should be idle, is %q", speaker.Status())
	}
}

func TestPrepareFallsBackToLocal(t *testing.T) {
	remote := &fakeRemote{err: errors.New("tts service unavailable")}
	recorder := &statusRecorder{}

	speaker := voice.NewSpeaker(remote, &fakeLocal{}, &voice.BufferPlayer{}, mustCatalog(t), &voice.SpeakerOptions{
		OnStatus: recorder.record,
	})

	utterance, err := speaker.Prepare(context.Background(), "namaste", "hi", "")
	if err != nil {
		t.Fatalf("Prepare err: %v", err)
	}

	if utterance.Mode != "local" {
		t.Fatalf("expected local fallback, got mode %q", utterance.Mode)
	}
	if !bytes.Equal(utterance.Audio, []byte("local:namaste")) {
		t.Fatalf("unexpected fallback audio: %s", utterance.Audio)
	}
	if !recorder.seen(voice.StatusFallback) {
		t.Fatal("fallback status never reported")
	}
	// Every Hindi voice should have been offered to the backend first.
	if calls := remote.voiceCalls(); len(calls) != 2 {
		t.Fatalf("expected both hi voices tried, got %v", calls)
	}
}

func TestPrepareStopsRetryingWhenBackendDown(t *testing.T) {
	remote := &fakeRemote{err: backend.ErrUnreachable}

	speaker := voice.NewSpeaker(remote, &fakeLocal{}, &voice.BufferPlayer{}, mustCatalog(t), nil)

	utterance, err := speaker.Prepare(context.Background(), "hello", "en", "")
	if err != nil {
		t.Fatalf("Prepare err: %v", err)
	}
	if utterance.Mode != "local" {
		t.Fatalf("expected local fallback, got %q", utterance.Mode)
	}
	if calls := remote.voiceCalls(); len(calls) != 1 {
		t.Fatalf("unreachable backend should stop the candidate loop, got %v", calls)
	}
}

func TestSpeakWithoutRemote(t *testing.T) {
	speaker := voice.NewSpeaker(nil, &fakeLocal{}, &voice.BufferPlayer{}, mustCatalog(t), nil)

	utterance, err := speaker.Prepare(context.Background(), "vanakkam", "ta", "")
	if err != nil {
		t.Fatalf("Prepare err: %v", err)
	}
	if utterance.Mode != "local" {
		t.Fatalf("expected local mode, got %q", utterance.Mode)
	}
}

func TestLocalFallbackFailure(t *testing.T) {
	speaker := voice.NewSpeaker(nil, &fakeLocal{err: errors.New("espeak-ng not installed")}, &voice.BufferPlayer{}, mustCatalog(t), nil)

	if _, err := speaker.Prepare(context.Background(), "hello", "en", ""); err == nil {
		t.Fatal("expected error when the local engine fails")
	}
	if speaker.Status() != voice.StatusIdle {
		t.Fatalf("speaker should settle back to idle, is %q", speaker.Status())
	}
}

func TestPlayNeverOverlaps(t *testing.T) {
	player := &slowPlayer{delay: 80 * time.Millisecond}
	speaker := voice.NewSpeaker(&fakeRemote{audio: []byte("wav")}, &fakeLocal{}, player, mustCatalog(t), nil)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			speaker.Speak(context.Background(), "overlapping utterance", "en", "priya")
		}()
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()

	player.mu.Lock()
	max := player.maxActive
	player.mu.Unlock()
	if max > 1 {
		t.Fatalf("expected at most one live audio stream, saw %d", max)
	}
}

func TestStopInterruptsPlayback(t *testing.T) {
	player := &slowPlayer{delay: 2 * time.Second}
	speaker := voice.NewSpeaker(&fakeRemote{audio: []byte("wav")}, &fakeLocal{}, player, mustCatalog(t), nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- speaker.Speak(context.Background(), "a very long reply", "en", "priya")
	}()

	time.Sleep(50 * time.Millisecond)
	speaker.Stop()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("superseded playback should not error, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Speak did not return after Stop")
	}
	if speaker.Status() != voice.StatusIdle {
		t.Fatalf("speaker should be idle after Stop, is %q", speaker.Status())
	}
}
