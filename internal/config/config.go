package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates every section the widget binaries read. The console
// and the demo server share one Load; each picks the sections it needs.
type Config struct {
	Server     ServerConfig
	Backend    BackendConfig
	Session    SessionConfig
	Recognizer RecognizerConfig
	Voice      VoiceConfig
	Events     EventsConfig
	Telemetry  TelemetryConfig
	Log        LogConfig
	AI         AIConfig
	RateLimit  RateLimitConfig
}

// Load reads all sections from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	backend, err := loadBackendConfig()
	if err != nil {
		return nil, err
	}

	recognizer, err := loadRecognizerConfig()
	if err != nil {
		return nil, err
	}

	voice, err := loadVoiceConfig()
	if err != nil {
		return nil, err
	}

	events, err := loadEventsConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	rateLimit, err := loadRateLimitConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:     server,
		Backend:    backend,
		Session:    loadSessionConfig(),
		Recognizer: recognizer,
		Voice:      voice,
		Events:     events,
		Telemetry:  TelemetryConfig{MetricsAddr: strings.TrimSpace(os.Getenv("METRICS_ADDR"))},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		AI:        ai,
		RateLimit: rateLimit,
	}, nil
}

// ServerConfig describes the demo server's HTTP listener.
type ServerConfig struct {
	Addr string
}

// loadServerConfig parses the listen address.
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// BackendConfig describes how the widget reaches the assistant backend.
type BackendConfig struct {
	BaseURL            string
	QueryTimeout       time.Duration
	TTSTimeout         time.Duration
	VisualTimeout      time.Duration
	HealthTimeout      time.Duration
	HealthPollInterval time.Duration
}

func loadBackendConfig() (BackendConfig, error) {
	cfg := BackendConfig{
		BaseURL:            getEnvOrDefault("BACKEND_BASE_URL", "http://localhost:8080"),
		QueryTimeout:       15 * time.Second,
		TTSTimeout:         8 * time.Second,
		VisualTimeout:      5 * time.Second,
		HealthTimeout:      3 * time.Second,
		HealthPollInterval: 30 * time.Second,
	}

	override := func(key string, dst *time.Duration) error {
		seconds, err := parseOptionalIntEnv(key)
		if err != nil {
			return err
		}
		if seconds != nil {
			if *seconds < 1 {
				return fmt.Errorf("invalid %s value %d: must be at least 1", key, *seconds)
			}
			*dst = time.Duration(*seconds) * time.Second
		}
		return nil
	}

	if err := override("BACKEND_QUERY_TIMEOUT_SECONDS", &cfg.QueryTimeout); err != nil {
		return BackendConfig{}, err
	}
	if err := override("BACKEND_TTS_TIMEOUT_SECONDS", &cfg.TTSTimeout); err != nil {
		return BackendConfig{}, err
	}
	if err := override("BACKEND_VISUAL_TIMEOUT_SECONDS", &cfg.VisualTimeout); err != nil {
		return BackendConfig{}, err
	}
	if err := override("BACKEND_HEALTH_TIMEOUT_SECONDS", &cfg.HealthTimeout); err != nil {
		return BackendConfig{}, err
	}
	if err := override("HEALTH_POLL_SECONDS", &cfg.HealthPollInterval); err != nil {
		return BackendConfig{}, err
	}

	return cfg, nil
}

// SessionConfig seeds the conversation context for a fresh console session.
type SessionConfig struct {
	Language    string
	VoiceID     string
	CustomerID  string
	PhoneNumber string
}

func loadSessionConfig() SessionConfig {
	return SessionConfig{
		Language:    getEnvOrDefault("LANGUAGE_DEFAULT", "en"),
		VoiceID:     strings.TrimSpace(os.Getenv("VOICE_DEFAULT")),
		CustomerID:  getEnvOrDefault("CUSTOMER_ID", "CUST12345"),
		PhoneNumber: getEnvOrDefault("PHONE_NUMBER", "+919876543210"),
	}
}

// RecognizerConfig selects and tunes the speech-to-text provider.
type RecognizerConfig struct {
	Provider     string
	SampleRate   int
	GatewayURL   string
	GatewayToken string
	MaxRetries   int
	Timeout      time.Duration
	MockText     string
	MicCommand   string
	MicFile      string
}

func loadRecognizerConfig() (RecognizerConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("RECOGNIZER", "mock"))
	switch provider {
	case "mock", "google", "gateway":
	default:
		return RecognizerConfig{}, fmt.Errorf("invalid RECOGNIZER value %q: want mock, google or gateway", provider)
	}

	sampleRate := 16000
	if rate, err := parseOptionalIntEnv("RECOGNIZER_SAMPLE_RATE"); err != nil {
		return RecognizerConfig{}, err
	} else if rate != nil {
		sampleRate = *rate
	}

	retries := 3
	if r, err := parseOptionalIntEnv("RECOGNIZER_MAX_RETRIES"); err != nil {
		return RecognizerConfig{}, err
	} else if r != nil {
		retries = *r
	}

	timeout := 15 * time.Second
	if seconds, err := parseOptionalIntEnv("RECOGNIZER_TIMEOUT_SECONDS"); err != nil {
		return RecognizerConfig{}, err
	} else if seconds != nil {
		timeout = time.Duration(*seconds) * time.Second
	}

	return RecognizerConfig{
		Provider:     provider,
		SampleRate:   sampleRate,
		GatewayURL:   getEnvOrDefault("GATEWAY_WS_URL", "ws://localhost:8080/api/recognize"),
		GatewayToken: strings.TrimSpace(os.Getenv("GATEWAY_TOKEN")),
		MaxRetries:   retries,
		Timeout:      timeout,
		MockText:     strings.TrimSpace(os.Getenv("RECOGNIZER_MOCK_TEXT")),
		MicCommand:   strings.TrimSpace(os.Getenv("MIC_CMD")),
		MicFile:      strings.TrimSpace(os.Getenv("MIC_FILE")),
	}, nil
}

// VoiceConfig tunes audio playback and the local synthesis fallback.
type VoiceConfig struct {
	PlayerCommand     string
	LocalSynthCommand string
	VoicesFile        string
	Speed             float32
}

func loadVoiceConfig() (VoiceConfig, error) {
	speed := float32(1.0)
	if s, err := parseOptionalFloat32Env("TTS_SPEED"); err != nil {
		return VoiceConfig{}, err
	} else if s != nil {
		speed = *s
	}

	return VoiceConfig{
		PlayerCommand:     strings.TrimSpace(os.Getenv("TTS_PLAYER_CMD")),
		LocalSynthCommand: getEnvOrDefault("LOCAL_TTS_CMD", "espeak-ng"),
		VoicesFile:        strings.TrimSpace(os.Getenv("VOICES_FILE")),
		Speed:             speed,
	}, nil
}

// EventsConfig describes the optional Kafka sink for turn events.
type EventsConfig struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// Active reports whether events should actually be shipped to Kafka.
func (c EventsConfig) Active() bool {
	return c.Enabled && len(c.Brokers) > 0
}

func loadEventsConfig() (EventsConfig, error) {
	enabled, err := parseBoolEnv("EVENTS_ENABLED", false)
	if err != nil {
		return EventsConfig{}, err
	}

	var brokers []string
	for _, broker := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}

	return EventsConfig{
		Brokers: brokers,
		Topic:   getEnvOrDefault("KAFKA_TOPIC", "vaani.turns"),
		Enabled: enabled,
	}, nil
}

// TelemetryConfig controls the optional standalone metrics listener.
type TelemetryConfig struct {
	MetricsAddr string
}

// LogConfig controls log verbosity and output format.
type LogConfig struct {
	Level  string
	Format string
}

// AIConfig carries the model credentials for the demo server's
// persona rewrite step.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials were provided.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates a model instance from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("missing Ark credentials: provide ARK_API_KEY + ARK_MODEL or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

// RateLimitConfig throttles demo server clients.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	rps := 10.0
	if v, err := parseOptionalFloatEnv("RATE_LIMIT_RPS"); err != nil {
		return RateLimitConfig{}, err
	} else if v != nil {
		rps = *v
	}

	burst := 20
	if v, err := parseOptionalIntEnv("RATE_LIMIT_BURST"); err != nil {
		return RateLimitConfig{}, err
	} else if v != nil {
		burst = *v
	}

	return RateLimitConfig{RPS: rps, Burst: burst}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
