package voice

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Player turns synthesized audio bytes into sound.
type Player interface {
	Play(ctx context.Context, audio []byte, format string) error
}

// CommandPlayer pipes audio into an external playback command such as
// "aplay -q" or "ffplay -nodisp -autoexit -".
type CommandPlayer struct {
	name string
	args []string
}

// NewCommandPlayer splits the configured command line into the program
// and its arguments.
func NewCommandPlayer(command string) (*CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty player command")
	}
	return &CommandPlayer{name: fields[0], args: fields[1:]}, nil
}

func (p *CommandPlayer) Play(ctx context.Context, audio []byte, format string) error {
	cmd := exec.CommandContext(ctx, p.name, p.args...)
	cmd.Stdin = bytes.NewReader(audio)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("playback command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// BufferPlayer records what would have been played. It backs the
// console when no playback command is configured, and tests.
type BufferPlayer struct {
	mu     sync.Mutex
	played [][]byte
}

func (p *BufferPlayer) Play(ctx context.Context, audio []byte, format string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.played = append(p.played, append([]byte(nil), audio...))
	if len(p.played) > 8 {
		p.played = p.played[len(p.played)-8:]
	}
	return nil
}

// Played returns the recorded audio buffers, newest last.
func (p *BufferPlayer) Played() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([][]byte, len(p.played))
	copy(out, p.played)
	return out
}
