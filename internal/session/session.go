// Package session models widget session state as an immutable value updated
// through a single reducer, so every mutation path is explicit and testable.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meetvaani/vaani/internal/model/chat"
)

var (
	ErrEmptyLanguage = errors.New("language code is required")
	ErrEmptyVoice    = errors.New("voice id is required")
)

// State is the session snapshot read by the backend client and the speaker
// on every turn. Values are never mutated in place; Reduce returns a new one.
type State struct {
	chat.SessionContext
}

// Event is a requested change to the session state.
type Event interface {
	isEvent()
}

// SetLanguage switches the active language code.
type SetLanguage struct {
	Code string
}

// SetVoice switches the selected synthesis voice.
type SetVoice struct {
	ID string
}

// SetCustomer binds the customer identity sent with every query.
type SetCustomer struct {
	CustomerID  string
	PhoneNumber string
}

func (SetLanguage) isEvent() {}
func (SetVoice) isEvent()    {}
func (SetCustomer) isEvent() {}

// New creates the initial session state with a fresh session ID.
func New(languageCode, voiceID, customerID, phoneNumber string) State {
	return State{chat.SessionContext{
		SessionID:       uuid.NewString(),
		LanguageCode:    languageCode,
		SelectedVoiceID: voiceID,
		CustomerID:      customerID,
		PhoneNumber:     phoneNumber,
		CreatedAt:       time.Now().UTC(),
	}}
}

// Reduce applies one event to a state and returns the next state. It is pure:
// the input state is never modified and the same inputs yield the same output.
func Reduce(state State, event Event) (State, error) {
	switch ev := event.(type) {
	case SetLanguage:
		if ev.Code == "" {
			return state, ErrEmptyLanguage
		}
		next := state
		next.LanguageCode = ev.Code
		return next, nil

	case SetVoice:
		if ev.ID == "" {
			return state, ErrEmptyVoice
		}
		next := state
		next.SelectedVoiceID = ev.ID
		return next, nil

	case SetCustomer:
		next := state
		next.CustomerID = ev.CustomerID
		next.PhoneNumber = ev.PhoneNumber
		return next, nil

	default:
		return state, fmt.Errorf("unknown session event %T", event)
	}
}
