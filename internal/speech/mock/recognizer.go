// Package mock provides a scripted recognizer for development without
// cloud credentials or a recognition gateway. It ignores the audio it
// is given and cycles through a fixed script of utterances.
package mock

import (
	"context"
	"sync"
	"time"

	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
)

// Utterance is one scripted transcription result.
type Utterance struct {
	Text       string
	Confidence float64
}

// DefaultUtterances provides sample telecom queries for simulation.
var DefaultUtterances = []Utterance{
	{Text: "What is my account balance?", Confidence: 0.94},
	{Text: "Recharge my phone with 200 rupees", Confidence: 0.92},
	{Text: "Compare the available data plans", Confidence: 0.9},
	{Text: "How much data do I have left?", Confidence: 0.93},
	{Text: "Why is my network so slow today?", Confidence: 0.88},
}

// Recognizer implements speech.Recognizer with scripted responses.
type Recognizer struct {
	mu     sync.Mutex
	script []Utterance
	next   int
	err    error
	delay  time.Duration
}

// New creates a scripted recognizer. With no utterances it cycles
// through DefaultUtterances.
func New(script ...Utterance) *Recognizer {
	if len(script) == 0 {
		script = DefaultUtterances
	}
	return &Recognizer{script: script, delay: 150 * time.Millisecond}
}

// FailWith makes every subsequent Recognize call return err. Passing
// nil restores normal operation.
func (r *Recognizer) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// SetDelay overrides the simulated processing delay.
func (r *Recognizer) SetDelay(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delay = d
}

// Recognize returns the next scripted utterance.
func (r *Recognizer) Recognize(ctx context.Context, req speechmodel.RecognitionRequest) (*speechmodel.RecognitionResult, error) {
	r.mu.Lock()
	err := r.err
	utterance := r.script[r.next%len(r.script)]
	delay := r.delay
	if err == nil {
		r.next++
	}
	r.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return &speechmodel.RecognitionResult{
		SessionID:  req.SessionID,
		Text:       utterance.Text,
		Confidence: utterance.Confidence,
		Provider:   "mock",
		CreatedAt:  time.Now().UTC(),
	}, nil
}
