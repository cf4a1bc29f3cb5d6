package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// SilenceSource emits small zero-filled chunks on a fixed cadence. It
// stands in for a microphone when the recognizer does not care about
// the audio content, such as the scripted mock provider.
type SilenceSource struct {
	ChunkSize int
	Interval  time.Duration
}

func (s *SilenceSource) Read(ctx context.Context) ([]byte, error) {
	size := s.ChunkSize
	if size <= 0 {
		size = 3200
	}
	interval := s.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(interval):
		return make([]byte, size), nil
	}
}

// FileSource replays a raw audio file in fixed-size chunks, standing in
// for a live microphone during development.
type FileSource struct {
	file      *os.File
	chunkSize int
}

// NewFileSource opens the given audio file for chunked reads.
func NewFileSource(path string, chunkSize int) (*FileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	if chunkSize <= 0 {
		chunkSize = 3200
	}
	return &FileSource{file: file, chunkSize: chunkSize}, nil
}

func (s *FileSource) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	chunk := make([]byte, s.chunkSize)
	n, err := s.file.Read(chunk)
	if n > 0 {
		return chunk[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

// Close releases the underlying file.
func (s *FileSource) Close() error {
	return s.file.Close()
}

// CommandSource streams audio from an external capture command such as
// "arecord -q -f S16_LE -r 16000 -c 1 -t raw". The command starts on
// the first Read of a capture session and is killed when the session
// context is cancelled, which unblocks the pending read.
type CommandSource struct {
	name      string
	args      []string
	chunkSize int

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

// NewCommandSource splits the configured command line into the program
// and its arguments.
func NewCommandSource(command string, chunkSize int) (*CommandSource, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty capture command")
	}
	if chunkSize <= 0 {
		chunkSize = 3200
	}
	return &CommandSource{name: fields[0], args: fields[1:], chunkSize: chunkSize}, nil
}

func (s *CommandSource) Read(ctx context.Context) ([]byte, error) {
	stdout, err := s.stream(ctx)
	if err != nil {
		return nil, err
	}

	chunk := make([]byte, s.chunkSize)
	n, err := stdout.Read(chunk)
	if n > 0 {
		return chunk[:n], nil
	}

	s.reap()
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err == nil || errors.Is(err, os.ErrClosed) {
		err = io.EOF
	}
	return nil, err
}

// stream returns the running command's stdout, starting the command if
// no capture is in flight.
func (s *CommandSource) stream(ctx context.Context) (io.Reader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdout != nil {
		return s.stdout, nil
	}

	cmd := exec.CommandContext(ctx, s.name, s.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start capture command: %w", err)
	}

	s.cmd = cmd
	s.stdout = stdout
	return stdout, nil
}

// reap collects the finished command so the next session restarts it.
func (s *CommandSource) reap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		s.cmd.Wait()
	}
	s.cmd = nil
	s.stdout = nil
}
