package chat

import "time"

// SessionContext carries the per-widget session metadata read on every turn.
type SessionContext struct {
	SessionID       string    `json:"sessionId"`
	LanguageCode    string    `json:"languageCode"`
	SelectedVoiceID string    `json:"selectedVoiceId"`
	CustomerID      string    `json:"customerId"`
	PhoneNumber     string    `json:"phoneNumber"`
	CreatedAt       time.Time `json:"createdAt"`
}
