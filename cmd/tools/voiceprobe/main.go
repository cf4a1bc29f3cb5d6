// Command voiceprobe exercises a running assistant backend from the
// command line: one-shot query, synthesis and recognition probes for
// checking a deployment without opening the console.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/meetvaani/vaani/internal/backend"
	"github.com/meetvaani/vaani/internal/config"
	speechmodel "github.com/meetvaani/vaani/internal/model/speech"
	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/speech/gateway"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	mode := flag.String("mode", "", "probe mode: query, tts or asr")
	text := flag.String("text", "", "query or synthesis text")
	audioPath := flag.String("audio", "", "asr input audio file path")
	outputPath := flag.String("out", "", "tts output file path (default tts-output-<ts>.wav)")
	language := flag.String("lang", "", "language code, defaults to LANGUAGE_DEFAULT")
	voiceID := flag.String("voice", "", "tts voice id, empty lets the backend pick")
	sessionID := flag.String("session", "", "session id, autogenerated when empty")
	timeout := flag.Duration("timeout", 45*time.Second, "request timeout")

	flag.Parse()

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: "console"})

	if *mode != "query" && *mode != "tts" && *mode != "asr" {
		flag.Usage()
		log.Fatal("pick a probe with -mode=query, -mode=tts or -mode=asr")
	}

	if *language == "" {
		*language = cfg.Session.Language
	}
	if *sessionID == "" {
		*sessionID = fmt.Sprintf("probe-%d", time.Now().UnixNano())
	}

	client := backend.NewClient(backend.Config{
		BaseURL:       cfg.Backend.BaseURL,
		QueryTimeout:  cfg.Backend.QueryTimeout,
		TTSTimeout:    cfg.Backend.TTSTimeout,
		VisualTimeout: cfg.Backend.VisualTimeout,
		HealthTimeout: cfg.Backend.HealthTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch *mode {
	case "query":
		runQuery(ctx, client, cfg, *sessionID, *text, *language)
	case "tts":
		runTTS(ctx, client, *text, *voiceID, *language, *outputPath)
	case "asr":
		runASR(ctx, cfg, *sessionID, *audioPath, *language)
	}
}

func runQuery(ctx context.Context, client *backend.Client, cfg *config.Config, sessionID, text, language string) {
	if strings.TrimSpace(text) == "" {
		log.Fatal("query mode needs -text")
	}

	log.Printf("probing /api/query: session=%s language=%s", sessionID, language)

	resp, err := client.Query(ctx, backend.QueryRequest{
		Query:       text,
		Language:    language,
		CustomerID:  cfg.Session.CustomerID,
		PhoneNumber: cfg.Session.PhoneNumber,
	})
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	if !resp.Succeeded() {
		log.Fatalf("backend rejected the query: %s", resp.Error)
	}

	log.Printf("reply: intent=%s confidence=%.2f", resp.Response.Intent, resp.Response.Confidence)
	log.Printf("text: %s", resp.Response.Text)
	log.Printf("metrics: time=%.2fs contained=%v cost=$%.4f",
		resp.Metrics.ProcessingTimeSeconds, resp.Metrics.Containment, resp.Metrics.CostUSD)
}

func runTTS(ctx context.Context, client *backend.Client, text, voiceID, language, outputPath string) {
	if strings.TrimSpace(text) == "" {
		log.Fatal("tts mode needs -text")
	}

	if outputPath == "" {
		outputPath = fmt.Sprintf("tts-output-%d.wav", time.Now().Unix())
	}

	log.Printf("probing /api/tts: voice=%s language=%s", voiceID, language)

	audio, err := client.Synthesize(ctx, backend.TTSRequest{
		Text:     text,
		Language: language,
		VoiceID:  voiceID,
	})
	if err != nil {
		log.Fatalf("synthesis failed: %v", err)
	}

	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		log.Fatalf("failed to write audio file: %v", err)
	}

	log.Printf("synthesis succeeded: %d bytes written to %s", len(audio), outputPath)
}

func runASR(ctx context.Context, cfg *config.Config, sessionID, audioPath, language string) {
	if audioPath == "" {
		log.Fatal("asr mode needs -audio")
	}

	audio, err := os.ReadFile(audioPath)
	if err != nil {
		log.Fatalf("failed to read audio file: %v", err)
	}

	client := gateway.New(gateway.Config{
		URL:         cfg.Recognizer.GatewayURL,
		Token:       cfg.Recognizer.GatewayToken,
		ReadTimeout: cfg.Recognizer.Timeout,
		MaxRetries:  cfg.Recognizer.MaxRetries,
	})

	log.Printf("probing %s: session=%s language=%s bytes=%d",
		cfg.Recognizer.GatewayURL, sessionID, language, len(audio))

	result, err := client.Recognize(ctx, speechmodel.RecognitionRequest{
		SessionID:  sessionID,
		Audio:      audio,
		Format:     "linear16",
		SampleRate: cfg.Recognizer.SampleRate,
		Language:   language,
	})
	if err != nil {
		log.Fatalf("recognition failed: %v", err)
	}

	log.Printf("recognition succeeded: text=%q confidence=%.2f provider=%s",
		result.Text, result.Confidence, result.Provider)
}
