package google

import (
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"

	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
)

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en-IN"},
		{"hi", "hi-IN"},
		{"ta", "ta-IN"},
		{"te", "te-IN"},
		{"HI ", "hi-IN"},
		{"", "en-IN"},
		{"fr", "en-IN"},
	}

	for _, tt := range tests {
		if got := languageCode(tt.input); got != tt.expected {
			t.Errorf("languageCode(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildRequest(t *testing.T) {
	req := buildRequest(speechmodel.RecognitionRequest{
		Audio:      []byte{0x01, 0x02},
		SampleRate: 8000,
		Language:   "hi",
	})

	if req.Config.Encoding != speechpb.RecognitionConfig_LINEAR16 {
		t.Errorf("expected LINEAR16 encoding, got %v", req.Config.Encoding)
	}
	if req.Config.SampleRateHertz != 8000 {
		t.Errorf("expected sample rate 8000, got %d", req.Config.SampleRateHertz)
	}
	if req.Config.LanguageCode != "hi-IN" {
		t.Errorf("expected language hi-IN, got %s", req.Config.LanguageCode)
	}

	content, ok := req.Audio.AudioSource.(*speechpb.RecognitionAudio_Content)
	if !ok {
		t.Fatalf("expected inline audio content, got %T", req.Audio.AudioSource)
	}
	if len(content.Content) != 2 {
		t.Errorf("unexpected audio length %d", len(content.Content))
	}
}

func TestBuildRequestDefaultsSampleRate(t *testing.T) {
	req := buildRequest(speechmodel.RecognitionRequest{Audio: []byte{0x01}})
	if req.Config.SampleRateHertz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", req.Config.SampleRateHertz)
	}
}
