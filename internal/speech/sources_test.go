package speech_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/meetvaani/vaani/internal/speech"
)

func TestFileSourceChunkedReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utterance.raw")
	if err := os.WriteFile(path, []byte("abcdefg"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	source, err := speech.NewFileSource(path, 3)
	if err != nil {
		t.Fatalf("NewFileSource err: %v", err)
	}
	defer source.Close()

	var got []byte
	for {
		chunk, err := source.Read(context.Background())
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Read err: %v", err)
		}
		if len(chunk) > 3 {
			t.Fatalf("chunk larger than configured size: %d", len(chunk))
		}
		got = append(got, chunk...)
	}

	if string(got) != "abcdefg" {
		t.Fatalf("replayed audio mismatch: %q", got)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	if _, err := speech.NewFileSource(filepath.Join(t.TempDir(), "nope.raw"), 0); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSilenceSourceEmitsZeroChunks(t *testing.T) {
	source := &speech.SilenceSource{ChunkSize: 8, Interval: time.Millisecond}

	chunk, err := source.Read(context.Background())
	if err != nil {
		t.Fatalf("Read err: %v", err)
	}
	if !bytes.Equal(chunk, make([]byte, 8)) {
		t.Fatalf("expected 8 zero bytes, got %v", chunk)
	}
}

func TestSilenceSourceHonorsCancel(t *testing.T) {
	source := &speech.SilenceSource{Interval: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := source.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewCommandSourceRejectsEmptyCommand(t *testing.T) {
	if _, err := speech.NewCommandSource("   ", 0); err == nil {
		t.Fatal("expected error for empty capture command")
	}
}
