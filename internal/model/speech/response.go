package speech

import "time"

// RecognitionResult is the single final transcript for one utterance.
// Partial results are never surfaced.
type RecognitionResult struct {
	SessionID  string    `json:"sessionId"`
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Provider   string    `json:"provider,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SynthesisResult holds rendered audio from the local engine.
type SynthesisResult struct {
	Audio     []byte    `json:"-"`
	Format    string    `json:"format"` // wav
	Voice     string    `json:"voice"`
	CreatedAt time.Time `json:"createdAt"`
}
