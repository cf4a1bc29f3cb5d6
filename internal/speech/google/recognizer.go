// Package google provides a Google Cloud Speech-to-Text recognizer.
// It submits the whole utterance in one synchronous request; streaming
// is left to the recognition gateway.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
)

// Recognizer implements speech.Recognizer using Google Cloud
// Speech-to-Text. Requires GOOGLE_APPLICATION_CREDENTIALS to be set.
type Recognizer struct {
	client *speech.Client
}

// New creates a Google recognizer.
func New(ctx context.Context) (*Recognizer, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	return &Recognizer{client: client}, nil
}

// Recognize transcribes a complete utterance.
func (r *Recognizer) Recognize(ctx context.Context, req speechmodel.RecognitionRequest) (*speechmodel.RecognitionResult, error) {
	if len(req.Audio) == 0 {
		return nil, errors.New("empty audio buffer")
	}

	resp, err := r.client.Recognize(ctx, buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("google recognize: %w", err)
	}

	var (
		parts      []string
		confidence float64
	)
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		parts = append(parts, alt.Transcript)
		if float64(alt.Confidence) > confidence {
			confidence = float64(alt.Confidence)
		}
	}

	return &speechmodel.RecognitionResult{
		SessionID:  req.SessionID,
		Text:       strings.TrimSpace(strings.Join(parts, " ")),
		Confidence: confidence,
		Provider:   "google",
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Close releases the underlying client.
func (r *Recognizer) Close() error {
	return r.client.Close()
}

func buildRequest(req speechmodel.RecognitionRequest) *speechpb.RecognizeRequest {
	sampleRate := req.SampleRate
	if sampleRate <= 0 {
		sampleRate = 16000
	}

	return &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz: int32(sampleRate),
			LanguageCode:    languageCode(req.Language),
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: req.Audio},
		},
	}
}

// languageCode maps the widget's short language tags to the BCP-47
// codes Google expects. Unknown tags fall back to Indian English.
func languageCode(lang string) string {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "hi":
		return "hi-IN"
	case "ta":
		return "ta-IN"
	case "te":
		return "te-IN"
	default:
		return "en-IN"
	}
}
