// Package assistant drives a conversation turn end to end: transcript
// bookkeeping, backend queries, visual generation, voice output and
// session metrics.
package assistant

import "fmt"

// TurnState tracks where the widget is inside one conversation turn.
type TurnState int

const (
	// TurnIdle - no turn in flight, input is accepted.
	TurnIdle TurnState = iota
	// TurnListening - the microphone is open.
	TurnListening
	// TurnSubmitting - the user message is being recorded.
	TurnSubmitting
	// TurnAwaitingReply - the backend query is in flight.
	TurnAwaitingReply
	// TurnRendering - reply received, visual and audio being prepared.
	TurnRendering
	// TurnSpeaking - the reply is being voiced.
	TurnSpeaking
)

// String returns the string representation of the state.
func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "IDLE"
	case TurnListening:
		return "LISTENING"
	case TurnSubmitting:
		return "SUBMITTING"
	case TurnAwaitingReply:
		return "AWAITING_REPLY"
	case TurnRendering:
		return "RENDERING"
	case TurnSpeaking:
		return "SPEAKING"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Busy reports whether a turn is being processed. Listening does not
// count: the microphone being open only blocks a second microphone.
func (s TurnState) Busy() bool {
	switch s {
	case TurnSubmitting, TurnAwaitingReply, TurnRendering, TurnSpeaking:
		return true
	}
	return false
}

// validNext lists the allowed transitions.
//
//	IDLE → LISTENING → SUBMITTING → AWAITING_REPLY → RENDERING → SPEAKING → IDLE
//	  │        │                                          │
//	  │        └── back to IDLE on cancel or error        └── straight to IDLE for silent turns
//	  └── SUBMITTING for typed input
//
// Every processing state may fall back to IDLE when the turn fails.
var validNext = map[TurnState][]TurnState{
	TurnIdle:          {TurnListening, TurnSubmitting},
	TurnListening:     {TurnIdle, TurnSubmitting},
	TurnSubmitting:    {TurnAwaitingReply, TurnIdle},
	TurnAwaitingReply: {TurnRendering, TurnIdle},
	TurnRendering:     {TurnSpeaking, TurnIdle},
	TurnSpeaking:      {TurnIdle},
}

// CanMoveTo reports whether the transition to next is allowed.
func (s TurnState) CanMoveTo(next TurnState) bool {
	for _, allowed := range validNext[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
