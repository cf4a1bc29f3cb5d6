package speech

// RecognitionRequest carries one utterance worth of captured audio.
type RecognitionRequest struct {
	SessionID  string `json:"sessionId"`
	Audio      []byte `json:"-"`
	Format     string `json:"format"`     // wav, pcm16
	SampleRate int    `json:"sampleRate"` // Hz, 16000 unless overridden
	Language   string `json:"language"`   // en, hi, ta, te
}

// SynthesisRequest asks the local engine to render text as audio.
type SynthesisRequest struct {
	Text     string  `json:"text"`
	Voice    string  `json:"voice"`    // engine voice name, already resolved
	Language string  `json:"language"` // en, hi, ta, te
	Speed    float32 `json:"speed"`    // words-per-minute ratio, 1.0 default
}
