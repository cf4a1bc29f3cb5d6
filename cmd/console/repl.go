package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"
	"github.com/rs/zerolog"

	"github.com/meetvaani/vaani/internal/assistant"
	"github.com/meetvaani/vaani/internal/backend"
	"github.com/meetvaani/vaani/internal/model/chat"
	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/session"
	"github.com/meetvaani/vaani/internal/speech"
	"github.com/meetvaani/vaani/internal/voice"
)

var consoleCommands = []string{"/help", "/lang", "/voice", "/voices", "/mic", "/metrics", "/health", "/quit"}

// console is the interactive chat loop. Transcript entries are printed
// by the store observer; the prompt carries the connectivity glyph and
// the capture or speaker state.
type console struct {
	client  *backend.Client
	catalog *voice.Catalog
	engine  *assistant.Engine
	history string
	log     zerolog.Logger

	mu       sync.Mutex
	online   bool
	speaking voice.Status
}

func newConsole(client *backend.Client, catalog *voice.Catalog, historyPath string) *console {
	if historyPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			historyPath = filepath.Join(home, ".vaani_history")
		}
	}

	return &console{
		client:   client,
		catalog:  catalog,
		history:  historyPath,
		log:      logging.WithComponent("console"),
		speaking: voice.StatusIdle,
	}
}

// connectivityChanged is fed by the health poller. The glyph updates on
// the next prompt; the poller already logs the flip itself.
func (c *console) connectivityChanged(up bool) {
	c.mu.Lock()
	c.online = up
	c.mu.Unlock()
}

func (c *console) speakerStatusChanged(status voice.Status) {
	c.mu.Lock()
	c.speaking = status
	c.mu.Unlock()
}

// renderMessage prints a transcript entry as soon as it lands.
func (c *console) renderMessage(msg chat.Message) {
	switch msg.Sender {
	case chat.SenderUser:
		fmt.Printf("you> %s\n", msg.Text)
	case chat.SenderAgent:
		fmt.Printf("vaani> %s\n", msg.Text)
		if msg.Visual != nil {
			if path, err := saveVisual(msg.Visual); err != nil {
				c.log.Debug().Err(err).Msg("could not save visual attachment")
			} else {
				fmt.Printf("       [%s saved to %s]\n", msg.Visual.Kind, path)
			}
		}
	}
}

// saveVisual writes the attached image next to the temp files so any
// viewer can open it.
func saveVisual(v *chat.Visual) (string, error) {
	img, err := base64.StdEncoding.DecodeString(v.ImageData)
	if err != nil {
		return "", fmt.Errorf("decode visual: %w", err)
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("vaani-%s-%d.png", v.Kind, time.Now().UnixNano()))
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (c *console) prompt() string {
	c.mu.Lock()
	online, speaking := c.online, c.speaking
	c.mu.Unlock()

	glyph := "○"
	if online {
		glyph = "●"
	}

	state := ""
	if c.engine.State() == assistant.TurnListening {
		state = " [rec]"
	} else if speaking != voice.StatusIdle {
		state = fmt.Sprintf(" [%s]", speaking)
	}

	return fmt.Sprintf("%s %s%s> ", glyph, c.engine.Session().LanguageCode, state)
}

// run drives the prompt loop until /quit, EOF or context cancellation.
func (c *console) run(ctx context.Context) error {
	rl := liner.NewLiner()
	defer rl.Close()

	rl.SetCtrlCAborts(true)
	rl.SetCompleter(func(text string) []string {
		if !strings.HasPrefix(text, "/") {
			return nil
		}
		var out []string
		for _, name := range consoleCommands {
			if strings.HasPrefix(name, strings.ToLower(text)) {
				out = append(out, name)
			}
		}
		return out
	})

	c.loadHistory(rl)
	defer c.saveHistory(rl)

	fmt.Printf("vaani console, session %s\n", shortID(c.engine.Session().SessionID))
	fmt.Println("type a question, /mic to talk, /help for commands")

	for {
		if ctx.Err() != nil {
			return nil
		}

		input, err := rl.Prompt(c.prompt())
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			fmt.Println("(interrupted, /quit to exit)")
			continue
		case errors.Is(err, io.EOF):
			fmt.Println()
			return nil
		case err != nil:
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		rl.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if c.dispatch(ctx, input) {
				return nil
			}
			continue
		}

		c.submit(ctx, input)
	}
}

// submit runs a typed chat turn. Turn failures land in the transcript,
// so only input rejections reach here.
func (c *console) submit(ctx context.Context, text string) {
	switch err := c.engine.Submit(ctx, text); {
	case err == nil, errors.Is(err, assistant.ErrEmptyInput):
	case errors.Is(err, assistant.ErrTurnInProgress):
		fmt.Println("hold on, the previous turn is still running")
	default:
		fmt.Printf("turn failed: %v\n", err)
	}
}

// dispatch handles a slash command; a true result ends the loop.
func (c *console) dispatch(ctx context.Context, input string) bool {
	fields := strings.Fields(input)
	command, args := strings.ToLower(fields[0]), fields[1:]

	switch command {
	case "/quit", "/exit":
		return true
	case "/help":
		c.printHelp()
	case "/lang":
		c.switchLanguage(args)
	case "/voice":
		c.switchVoice(args)
	case "/voices":
		c.listVoices(ctx)
	case "/mic":
		c.toggleMic(ctx)
	case "/metrics":
		c.printMetrics()
	case "/health":
		c.checkHealth(ctx)
	default:
		fmt.Printf("unknown command %s, try /help\n", command)
	}
	return false
}

func (c *console) printHelp() {
	fmt.Println(`commands:
  /lang <code>   switch language (en, hi, ta, te)
  /voice <id>    switch synthesis voice
  /voices        list available voices
  /mic           start or stop voice capture
  /metrics       show session metrics
  /health        probe the backend
  /quit          leave the console`)
}

// switchLanguage changes the session language and moves to that
// language's default voice when the catalog has one.
func (c *console) switchLanguage(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: /lang <code>")
		return
	}

	code := strings.ToLower(args[0])
	if err := c.engine.Apply(session.SetLanguage{Code: code}); err != nil {
		fmt.Printf("cannot switch language: %v\n", err)
		return
	}

	if v, ok := c.catalog.DefaultFor(code); ok {
		if err := c.engine.Apply(session.SetVoice{ID: v.ID}); err == nil {
			fmt.Printf("language set to %s, voice %s\n", code, v.ID)
			return
		}
	}
	fmt.Printf("language set to %s (no matching voice in catalog)\n", code)
}

func (c *console) switchVoice(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: /voice <id>")
		return
	}

	v, ok := c.catalog.Find(args[0])
	if !ok {
		fmt.Printf("unknown voice %q, see /voices\n", args[0])
		return
	}

	if err := c.engine.Apply(session.SetVoice{ID: v.ID}); err != nil {
		fmt.Printf("cannot switch voice: %v\n", err)
		return
	}
	fmt.Printf("voice set to %s (%s)\n", v.Name, v.Language)
}

// listVoices prefers the backend's catalog and falls back to the local
// one when the backend cannot be reached.
func (c *console) listVoices(ctx context.Context) {
	groups, err := c.client.Voices(ctx)
	if err != nil {
		fmt.Println("backend catalog unavailable, showing local voices")
		groups = map[string][]backend.VoiceInfo{}
		for _, v := range c.catalog.All() {
			groups[v.Language] = append(groups[v.Language], backend.VoiceInfo{
				ID:          v.ID,
				Name:        v.Name,
				Description: v.Description,
			})
		}
	}

	languages := make([]string, 0, len(groups))
	for lang := range groups {
		languages = append(languages, lang)
	}
	sort.Strings(languages)

	selected := c.engine.Session().SelectedVoiceID
	for _, lang := range languages {
		fmt.Printf("%s:\n", lang)
		for _, v := range groups[lang] {
			marker := " "
			if v.ID == selected {
				marker = "*"
			}
			fmt.Printf(" %s %-10s %s\n", marker, v.ID, v.Description)
		}
	}
}

func (c *console) toggleMic(ctx context.Context) {
	err := c.engine.ToggleListening(ctx)
	switch {
	case err == nil:
		if c.engine.State() == assistant.TurnListening {
			fmt.Println("listening... /mic again to stop")
		}
	case errors.Is(err, assistant.ErrVoiceUnavailable):
		fmt.Println("voice input is not configured")
	case errors.Is(err, assistant.ErrTurnInProgress):
		fmt.Println("hold on, the previous turn is still running")
	case errors.Is(err, speech.ErrAlreadyListening), errors.Is(err, speech.ErrNotListening):
		fmt.Printf("microphone out of step: %v\n", err)
	default:
		fmt.Printf("voice capture failed: %v\n", err)
	}
}

func (c *console) printMetrics() {
	snap := c.engine.Snapshot()
	fmt.Printf("queries:           %d\n", snap.TotalQueries)
	fmt.Printf("avg response time: %.2fs\n", snap.AverageResponseTimeSeconds)
	fmt.Printf("avg confidence:    %.2f\n", snap.AverageConfidence)
	fmt.Printf("containment rate:  %.0f%%\n", snap.ContainmentRate*100)
	fmt.Printf("cumulative cost:   $%.4f\n", snap.CumulativeCostUSD)
}

// checkHealth probes the backend once, outside the poller's cadence.
func (c *console) checkHealth(ctx context.Context) {
	err := c.client.Health(ctx)
	up := err == nil
	c.engine.SetOnline(up)
	c.connectivityChanged(up)

	if up {
		fmt.Println("backend is up")
	} else {
		fmt.Printf("backend unreachable: %v\n", err)
	}
}

func (c *console) loadHistory(rl *liner.State) {
	if c.history == "" {
		return
	}

	f, err := os.Open(c.history)
	if err != nil {
		return
	}
	defer f.Close()

	if _, err := rl.ReadHistory(f); err != nil {
		c.log.Debug().Err(err).Msg("could not read history file")
	}
}

func (c *console) saveHistory(rl *liner.State) {
	if c.history == "" {
		return
	}

	f, err := os.Create(c.history)
	if err != nil {
		c.log.Debug().Err(err).Msg("could not save history file")
		return
	}
	defer f.Close()

	if _, err := rl.WriteHistory(f); err != nil {
		c.log.Debug().Err(err).Msg("could not write history file")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
