package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetvaani/vaani/internal/session"
)

func TestNewAssignsSessionID(t *testing.T) {
	state := session.New("en", "priya", "CUST12345", "+919876543210")

	require.NotEmpty(t, state.SessionID)
	assert.Equal(t, "en", state.LanguageCode)
	assert.Equal(t, "priya", state.SelectedVoiceID)
	assert.Equal(t, "CUST12345", state.CustomerID)
	assert.False(t, state.CreatedAt.IsZero())
}

func TestReduceSetLanguage(t *testing.T) {
	state := session.New("en", "priya", "CUST12345", "")

	next, err := session.Reduce(state, session.SetLanguage{Code: "hi"})
	require.NoError(t, err)

	assert.Equal(t, "hi", next.LanguageCode)
	assert.Equal(t, "en", state.LanguageCode, "input state must not change")
	assert.Equal(t, state.SessionID, next.SessionID)
}

func TestReduceSetVoice(t *testing.T) {
	state := session.New("en", "priya", "CUST12345", "")

	next, err := session.Reduce(state, session.SetVoice{ID: "arjun"})
	require.NoError(t, err)
	assert.Equal(t, "arjun", next.SelectedVoiceID)
}

func TestReduceRejectsEmptyValues(t *testing.T) {
	state := session.New("en", "priya", "CUST12345", "")

	_, err := session.Reduce(state, session.SetLanguage{})
	assert.ErrorIs(t, err, session.ErrEmptyLanguage)

	_, err = session.Reduce(state, session.SetVoice{})
	assert.ErrorIs(t, err, session.ErrEmptyVoice)
}

func TestReduceUnknownEvent(t *testing.T) {
	state := session.New("en", "priya", "CUST12345", "")

	_, err := session.Reduce(state, nil)
	assert.Error(t, err)
}

func TestReduceIsPure(t *testing.T) {
	state := session.New("en", "priya", "CUST12345", "")

	a, err := session.Reduce(state, session.SetLanguage{Code: "ta"})
	require.NoError(t, err)
	b, err := session.Reduce(state, session.SetLanguage{Code: "ta"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
