package assistant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meetvaani/vaani/internal/assistant"
)

func TestTurnStateAllowsForwardPath(t *testing.T) {
	path := []assistant.TurnState{
		assistant.TurnIdle,
		assistant.TurnListening,
		assistant.TurnSubmitting,
		assistant.TurnAwaitingReply,
		assistant.TurnRendering,
		assistant.TurnSpeaking,
		assistant.TurnIdle,
	}

	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanMoveTo(path[i+1]),
			"%s should allow %s", path[i], path[i+1])
	}
}

func TestTurnStateRejectsSkipsAndReversals(t *testing.T) {
	cases := []struct {
		from, to assistant.TurnState
	}{
		{assistant.TurnIdle, assistant.TurnAwaitingReply},
		{assistant.TurnIdle, assistant.TurnSpeaking},
		{assistant.TurnListening, assistant.TurnRendering},
		{assistant.TurnSubmitting, assistant.TurnSpeaking},
		{assistant.TurnAwaitingReply, assistant.TurnSubmitting},
		{assistant.TurnSpeaking, assistant.TurnRendering},
		{assistant.TurnSpeaking, assistant.TurnSpeaking},
	}

	for _, tc := range cases {
		assert.False(t, tc.from.CanMoveTo(tc.to),
			"%s should not allow %s", tc.from, tc.to)
	}
}

func TestEveryProcessingStateCanReturnToIdle(t *testing.T) {
	// A failed turn drops straight back to idle no matter where it was.
	for _, state := range []assistant.TurnState{
		assistant.TurnListening,
		assistant.TurnSubmitting,
		assistant.TurnAwaitingReply,
		assistant.TurnRendering,
		assistant.TurnSpeaking,
	} {
		assert.True(t, state.CanMoveTo(assistant.TurnIdle),
			"%s should allow a fallback to IDLE", state)
	}
}

func TestBusyExcludesListeningAndIdle(t *testing.T) {
	assert.False(t, assistant.TurnIdle.Busy())
	assert.False(t, assistant.TurnListening.Busy())
	assert.True(t, assistant.TurnSubmitting.Busy())
	assert.True(t, assistant.TurnAwaitingReply.Busy())
	assert.True(t, assistant.TurnRendering.Busy())
	assert.True(t, assistant.TurnSpeaking.Busy())
}

func TestTurnStateLabels(t *testing.T) {
	assert.Equal(t, "IDLE", assistant.TurnIdle.String())
	assert.Equal(t, "AWAITING_REPLY", assistant.TurnAwaitingReply.String())
	assert.Equal(t, "UNKNOWN(99)", assistant.TurnState(99).String())
}
