package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meetvaani/vaani/internal/assistant"
	"github.com/meetvaani/vaani/internal/backend"
	"github.com/meetvaani/vaani/internal/config"
	"github.com/meetvaani/vaani/internal/events"
	"github.com/meetvaani/vaani/internal/observability"
	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/session"
	"github.com/meetvaani/vaani/internal/speech"
	"github.com/meetvaani/vaani/internal/speech/gateway"
	"github.com/meetvaani/vaani/internal/speech/google"
	"github.com/meetvaani/vaani/internal/speech/mock"
	"github.com/meetvaani/vaani/internal/transcript"
	"github.com/meetvaani/vaani/internal/visual"
	"github.com/meetvaani/vaani/internal/voice"
)

// rootFlags overrides environment configuration from the command line.
type rootFlags struct {
	backendURL string
	language   string
	voiceID    string
	customerID string
	phone      string
	recognizer string
	micCommand string
	micFile    string
	playerCmd  string
	logLevel   string
	logFormat  string
	history    string
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "vaani",
		Short: "Interactive console for the multilingual voice assistant widget",
		Long: `vaani opens a chat session against the assistant backend. Typed
lines become queries; /mic toggles voice capture. Replies are shown in
the transcript and voiced through the configured audio player, with a
local synthesis fallback when the backend cannot provide speech.

Configuration comes from the environment (and an optional .env file);
flags override individual settings.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.backendURL, "backend", "", "assistant backend base URL (BACKEND_BASE_URL)")
	cmd.Flags().StringVarP(&flags.language, "language", "l", "", "initial language code: en, hi, ta, te (LANGUAGE_DEFAULT)")
	cmd.Flags().StringVar(&flags.voiceID, "voice", "", "initial voice id (VOICE_DEFAULT)")
	cmd.Flags().StringVar(&flags.customerID, "customer", "", "customer id sent with every query (CUSTOMER_ID)")
	cmd.Flags().StringVar(&flags.phone, "phone", "", "customer phone number (PHONE_NUMBER)")
	cmd.Flags().StringVar(&flags.recognizer, "recognizer", "", "speech provider: mock, google or gateway (RECOGNIZER)")
	cmd.Flags().StringVar(&flags.micCommand, "mic-cmd", "", "external capture command, e.g. \"arecord -q -t raw\" (MIC_CMD)")
	cmd.Flags().StringVar(&flags.micFile, "mic-file", "", "raw audio file replayed instead of a microphone (MIC_FILE)")
	cmd.Flags().StringVar(&flags.playerCmd, "player", "", "audio playback command, e.g. \"aplay -q\" (TTS_PLAYER_CMD)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log verbosity, interactive default is warn (LOG_LEVEL)")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "", "log format: console or json (LOG_FORMAT)")
	cmd.Flags().StringVar(&flags.history, "history", "", "readline history file (default ~/.vaani_history)")

	return cmd
}

func runConsole(cmd *cobra.Command, flags *rootFlags) error {
	ctx := cmd.Context()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	applyFlags(cmd, flags, cfg)

	logging.Init(logging.Config{Level: consoleLogLevel(cmd, flags, cfg), Format: consoleLogFormat(cmd, flags)})
	logger := logging.WithComponent("console")

	client := backend.NewClient(backend.Config{
		BaseURL:       cfg.Backend.BaseURL,
		QueryTimeout:  cfg.Backend.QueryTimeout,
		TTSTimeout:    cfg.Backend.TTSTimeout,
		VisualTimeout: cfg.Backend.VisualTimeout,
		HealthTimeout: cfg.Backend.HealthTimeout,
	})

	catalog, err := voice.LoadCatalog(cfg.Voice.VoicesFile)
	if err != nil {
		return fmt.Errorf("load voice catalog: %w", err)
	}

	voiceID := cfg.Session.VoiceID
	if voiceID == "" {
		if v, ok := catalog.DefaultFor(cfg.Session.Language); ok {
			voiceID = v.ID
		}
	}
	sess := session.New(cfg.Session.Language, voiceID, cfg.Session.CustomerID, cfg.Session.PhoneNumber)

	store := transcript.NewStore(sess.SessionID)

	ui := newConsole(client, catalog, flags.history)
	store.Subscribe(ui.renderMessage)

	speaker := buildSpeaker(client, catalog, cfg, ui, logger)
	capture := buildCapture(ctx, cfg, logger)

	publisher := events.New(&events.Config{
		Brokers: cfg.Events.Brokers,
		Topic:   cfg.Events.Topic,
		Enabled: cfg.Events.Enabled,
	})
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("event publisher close failed")
		}
	}()

	engine, err := assistant.New(assistant.Options{
		Transcript: store,
		Backend:    client,
		Speaker:    speaker,
		Visual:     visual.NewGenerator(client),
		Capture:    capture,
		Events:     publisher,
		Session:    sess,
	})
	if err != nil {
		return err
	}
	ui.engine = engine

	poller := backend.NewPoller(client, cfg.Backend.HealthPollInterval, func(up bool) {
		engine.SetOnline(up)
		ui.connectivityChanged(up)
	})
	go poller.Run(ctx)

	if cfg.Telemetry.MetricsAddr != "" {
		metricsSrv := observability.NewServer(cfg.Telemetry.MetricsAddr)
		metricsSrv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	return ui.run(ctx)
}

// applyFlags copies explicitly set flags over the environment values.
func applyFlags(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) {
	override := func(name string, dst *string, value string) {
		if cmd.Flags().Changed(name) {
			*dst = strings.TrimSpace(value)
		}
	}

	override("backend", &cfg.Backend.BaseURL, flags.backendURL)
	override("language", &cfg.Session.Language, flags.language)
	override("voice", &cfg.Session.VoiceID, flags.voiceID)
	override("customer", &cfg.Session.CustomerID, flags.customerID)
	override("phone", &cfg.Session.PhoneNumber, flags.phone)
	override("recognizer", &cfg.Recognizer.Provider, flags.recognizer)
	override("mic-cmd", &cfg.Recognizer.MicCommand, flags.micCommand)
	override("mic-file", &cfg.Recognizer.MicFile, flags.micFile)
	override("player", &cfg.Voice.PlayerCommand, flags.playerCmd)
}

// consoleLogLevel defaults to warn so log lines do not interleave with
// the chat transcript unless asked for.
func consoleLogLevel(cmd *cobra.Command, flags *rootFlags, cfg *config.Config) string {
	if cmd.Flags().Changed("log-level") {
		return flags.logLevel
	}
	if strings.TrimSpace(os.Getenv("LOG_LEVEL")) != "" {
		return cfg.Log.Level
	}
	return "warn"
}

// consoleLogFormat defaults to the pretty writer for interactive use.
func consoleLogFormat(cmd *cobra.Command, flags *rootFlags) string {
	if cmd.Flags().Changed("log-format") {
		return flags.logFormat
	}
	if v := strings.TrimSpace(os.Getenv("LOG_FORMAT")); v != "" {
		return v
	}
	return "console"
}

// buildSpeaker wires reply audio. Without a working local engine the
// console stays text-only rather than failing to start.
func buildSpeaker(client *backend.Client, catalog *voice.Catalog, cfg *config.Config, ui *console, logger zerolog.Logger) *voice.Speaker {
	local, err := voice.NewLocalSynthesizer(cfg.Voice.LocalSynthCommand)
	if err != nil {
		logger.Warn().Err(err).Msg("local synthesis unavailable, reply audio disabled")
		return nil
	}

	var player voice.Player = &voice.BufferPlayer{}
	if cfg.Voice.PlayerCommand != "" {
		if cmdPlayer, playerErr := voice.NewCommandPlayer(cfg.Voice.PlayerCommand); playerErr != nil {
			logger.Warn().Err(playerErr).Msg("invalid player command, audio is buffered only")
		} else {
			player = cmdPlayer
		}
	}

	return voice.NewSpeaker(client, local, player, catalog, &voice.SpeakerOptions{
		OnStatus: ui.speakerStatusChanged,
		Speed:    cfg.Voice.Speed,
	})
}

// buildCapture wires voice input from the configured recognizer and
// audio source.
func buildCapture(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *speech.Capture {
	var recognizer speech.Recognizer
	switch cfg.Recognizer.Provider {
	case "google":
		if r, err := google.New(ctx); err != nil {
			logger.Warn().Err(err).Msg("google recognizer unavailable, falling back to mock")
		} else {
			recognizer = r
		}
	case "gateway":
		recognizer = gateway.New(gateway.Config{
			URL:         cfg.Recognizer.GatewayURL,
			Token:       cfg.Recognizer.GatewayToken,
			ReadTimeout: cfg.Recognizer.Timeout,
			MaxRetries:  cfg.Recognizer.MaxRetries,
		})
	}
	if recognizer == nil {
		if cfg.Recognizer.MockText != "" {
			recognizer = mock.New(mock.Utterance{Text: cfg.Recognizer.MockText, Confidence: 0.92})
		} else {
			recognizer = mock.New()
		}
	}

	var source speech.Source = &speech.SilenceSource{}
	switch {
	case cfg.Recognizer.MicCommand != "":
		if s, err := speech.NewCommandSource(cfg.Recognizer.MicCommand, 0); err != nil {
			logger.Warn().Err(err).Msg("invalid capture command, recording silence")
		} else {
			source = s
		}
	case cfg.Recognizer.MicFile != "":
		if s, err := speech.NewFileSource(cfg.Recognizer.MicFile, 0); err != nil {
			logger.Warn().Err(err).Msg("cannot open mic file, recording silence")
		} else {
			source = s
		}
	}

	return speech.NewCapture(recognizer, source, &speech.CaptureOptions{
		Provider:   cfg.Recognizer.Provider,
		SampleRate: cfg.Recognizer.SampleRate,
		Format:     "linear16",
	})
}
