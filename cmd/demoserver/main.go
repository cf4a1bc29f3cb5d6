package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/meetvaani/vaani/internal/config"
	"github.com/meetvaani/vaani/internal/demoserver"
	"github.com/meetvaani/vaani/internal/observability"
	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/speech"
	"github.com/meetvaani/vaani/internal/speech/google"
	"github.com/meetvaani/vaani/internal/speech/mock"
	"github.com/meetvaani/vaani/internal/voice"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logger := logging.WithComponent("main")

	catalog, err := voice.LoadCatalog(cfg.Voice.VoicesFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load voice catalog")
	}

	var synthesizer demoserver.Synthesizer
	if synth, synthErr := voice.NewLocalSynthesizer(cfg.Voice.LocalSynthCommand); synthErr != nil {
		logger.Warn().Err(synthErr).Msg("local synthesis unavailable, /api/tts disabled")
	} else {
		synthesizer = synth
	}

	var assist *demoserver.Assist
	if cfg.AI.Enabled() {
		assist, err = demoserver.NewAssist(ctx, cfg.AI)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize assist, serving canned replies")
			assist = nil
		} else {
			logger.Info().Msg("model-assisted replies enabled")
		}
	} else {
		logger.Info().Msg("Ark credentials not configured, serving canned replies")
	}

	srv := demoserver.New(demoserver.Options{
		Catalog:      catalog,
		Synthesizer:  synthesizer,
		Recognizer:   serverRecognizer(ctx, cfg, logger),
		Assist:       assist,
		RateLimit:    cfg.RateLimit,
		GatewayToken: cfg.Recognizer.GatewayToken,
	})

	if cfg.Telemetry.MetricsAddr != "" {
		metricsSrv := observability.NewServer(cfg.Telemetry.MetricsAddr)
		metricsSrv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	startServer(ctx, cfg.Server, srv.Router())
}

// serverRecognizer picks the recognizer backing /api/recognize. The
// gateway provider is the console's way of reaching this server, so it
// never applies here.
func serverRecognizer(ctx context.Context, cfg *config.Config, logger zerolog.Logger) speech.Recognizer {
	switch cfg.Recognizer.Provider {
	case "google":
		recognizer, err := google.New(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("google recognizer unavailable, falling back to mock")
		} else {
			logger.Info().Msg("google recognizer enabled")
			return recognizer
		}
	case "gateway":
		logger.Warn().Msg("gateway recognizer is client-side, using mock")
	}

	if cfg.Recognizer.MockText != "" {
		return mock.New(mock.Utterance{Text: cfg.Recognizer.MockText, Confidence: 0.92})
	}
	return mock.New()
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger := logging.WithComponent("main")
	logger.Info().Str("addr", serverCfg.Addr).Msg("vaani backend listening")
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
