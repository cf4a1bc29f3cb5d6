package voice

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
)

// espeak-ng speaks at 175 words per minute at speed 1.0.
const baseWordsPerMinute = 175

// LocalSynthesizer shells out to a local speech engine. The default
// command is espeak-ng; anything that accepts "-v voice -s speed
// --stdout text" works.
type LocalSynthesizer struct {
	name string
	args []string
}

// NewLocalSynthesizer splits the configured command line into the
// program and its fixed arguments.
func NewLocalSynthesizer(command string) (*LocalSynthesizer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty synthesizer command")
	}
	return &LocalSynthesizer{name: fields[0], args: fields[1:]}, nil
}

// Synthesize renders text to WAV bytes with the local engine.
func (s *LocalSynthesizer) Synthesize(ctx context.Context, req speechmodel.SynthesisRequest) (*speechmodel.SynthesisResult, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("synthesis text is empty")
	}

	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = "en"
	}

	speed := req.Speed
	if speed <= 0 {
		speed = 1.0
	}

	args := append(append([]string(nil), s.args...),
		"-v", voice,
		"-s", strconv.Itoa(int(float32(baseWordsPerMinute)*speed)),
		"--stdout",
		text,
	)

	cmd := exec.CommandContext(ctx, s.name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("local synthesis failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	audio := stdout.Bytes()
	if len(audio) == 0 {
		return nil, fmt.Errorf("local synthesis produced no audio for voice %s", voice)
	}

	return &speechmodel.SynthesisResult{
		Audio:     audio,
		Format:    "wav",
		Voice:     voice,
		CreatedAt: time.Now().UTC(),
	}, nil
}
