package voice

// Voice describes one selectable synthesis voice exposed to the widget.
type Voice struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Language    string `json:"language" yaml:"language"`                  // en, hi, ta, te
	EngineVoice string `json:"engineVoice,omitempty" yaml:"engine_voice"` // local engine voice name
	Premium     bool   `json:"premium,omitempty" yaml:"premium"`          // served by remote synthesis when available
}

// Seed provides the default voice catalog served by /api/voices.
func Seed() []Voice {
	return []Voice{
		{
			ID:          "priya",
			Name:        "Priya",
			Description: "Warm female voice, Indian English",
			Language:    "en",
			EngineVoice: "en-in+f3",
			Premium:     true,
		},
		{
			ID:          "arjun",
			Name:        "Arjun",
			Description: "Clear male voice, Indian English",
			Language:    "en",
			EngineVoice: "en-in+m2",
		},
		{
			ID:          "vaani",
			Name:        "Vaani",
			Description: "Friendly female voice, Hindi",
			Language:    "hi",
			EngineVoice: "hi+f2",
			Premium:     true,
		},
		{
			ID:          "kabir",
			Name:        "Kabir",
			Description: "Calm male voice, Hindi",
			Language:    "hi",
			EngineVoice: "hi+m3",
		},
		{
			ID:          "meena",
			Name:        "Meena",
			Description: "Bright female voice, Tamil",
			Language:    "ta",
			EngineVoice: "ta+f1",
			Premium:     true,
		},
		{
			ID:          "lakshmi",
			Name:        "Lakshmi",
			Description: "Gentle female voice, Telugu",
			Language:    "te",
			EngineVoice: "te+f2",
			Premium:     true,
		},
	}
}
