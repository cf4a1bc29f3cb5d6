package backend

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query       string `json:"query"`
	Language    string `json:"language"`
	CustomerID  string `json:"customer_id"`
	PhoneNumber string `json:"phone_number"`
}

// ReplyPayload is the structured agent reply inside a query response.
type ReplyPayload struct {
	Text       string  `json:"text"`
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// TurnMetrics reports per-turn measurements from the backend.
type TurnMetrics struct {
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	IntentConfidence      float64 `json:"intent_confidence"`
	Containment           bool    `json:"containment"`
	CostUSD               float64 `json:"cost_usd"`
}

// QueryResponse is the body of a successful POST /api/query round trip.
type QueryResponse struct {
	Status   string       `json:"status"` // success, error
	Response ReplyPayload `json:"response"`
	Metrics  TurnMetrics  `json:"metrics"`
	Error    string       `json:"error,omitempty"`
}

// Succeeded reports whether the backend marked the turn successful.
func (r *QueryResponse) Succeeded() bool {
	return r != nil && r.Status == "success"
}

// TTSRequest is the body of POST /api/tts.
type TTSRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	VoiceID  string `json:"voice_id"`
}

// VoiceInfo is one selectable voice in the GET /api/voices catalog.
type VoiceInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// VoiceListResponse is the body of GET /api/voices.
type VoiceListResponse struct {
	Voices map[string][]VoiceInfo `json:"voices"`
}

// VisualRequest is the body of POST /api/generate-visual.
type VisualRequest struct {
	VisualType string         `json:"visual_type"`
	Data       map[string]any `json:"data"`
	Language   string         `json:"language"`
}

// VisualResponse is the body of a successful POST /api/generate-visual.
type VisualResponse struct {
	Image string `json:"image"` // base64 PNG
	Type  string `json:"type"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}
