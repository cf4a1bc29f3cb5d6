package config_test

import (
	"testing"
	"time"

	"github.com/meetvaani/vaani/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("unexpected server addr: %s", cfg.Server.Addr)
	}
	if cfg.Backend.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected backend base URL: %s", cfg.Backend.BaseURL)
	}
	if cfg.Backend.HealthPollInterval != 30*time.Second {
		t.Fatalf("unexpected health poll interval: %s", cfg.Backend.HealthPollInterval)
	}
	if cfg.Session.Language != "en" {
		t.Fatalf("unexpected default language: %s", cfg.Session.Language)
	}
	if cfg.Recognizer.Provider != "mock" {
		t.Fatalf("unexpected default recognizer: %s", cfg.Recognizer.Provider)
	}
	if cfg.Events.Active() {
		t.Fatal("events should be inactive without brokers")
	}
}

func TestLoadServerAddrForms(t *testing.T) {
	t.Setenv("PORT", "127.0.0.1:9090")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}

	t.Setenv("PORT", "bad port")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for whitespace PORT")
	}
}

func TestLoadRejectsUnknownRecognizer(t *testing.T) {
	t.Setenv("RECOGNIZER", "whisper")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for unknown recognizer provider")
	}
}

func TestLoadEventsBrokers(t *testing.T) {
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092 ,")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if !cfg.Events.Active() {
		t.Fatal("expected events to be active")
	}
	if len(cfg.Events.Brokers) != 2 || cfg.Events.Brokers[1] != "broker-2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Events.Brokers)
	}
	if cfg.Events.Topic != "vaani.turns" {
		t.Fatalf("unexpected topic: %s", cfg.Events.Topic)
	}
}

func TestLoadTimeoutOverrides(t *testing.T) {
	t.Setenv("BACKEND_QUERY_TIMEOUT_SECONDS", "40")
	t.Setenv("HEALTH_POLL_SECONDS", "5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}

	if cfg.Backend.QueryTimeout != 40*time.Second {
		t.Fatalf("unexpected query timeout: %s", cfg.Backend.QueryTimeout)
	}
	if cfg.Backend.HealthPollInterval != 5*time.Second {
		t.Fatalf("unexpected poll interval: %s", cfg.Backend.HealthPollInterval)
	}

	t.Setenv("HEALTH_POLL_SECONDS", "0")
	if _, err := config.Load(); err == nil {
		t.Fatal("expected error for zero poll interval")
	}
}

func TestAIConfigEnabled(t *testing.T) {
	cfg := config.AIConfig{}
	if cfg.Enabled() {
		t.Fatal("empty AI config must be disabled")
	}

	cfg = config.AIConfig{Model: "doubao-pro", APIKey: "key"}
	if !cfg.Enabled() {
		t.Fatal("API key plus model should enable AI")
	}

	cfg = config.AIConfig{Model: "doubao-pro", AccessKey: "ak", SecretKey: "sk"}
	if !cfg.Enabled() {
		t.Fatal("AK/SK pair plus model should enable AI")
	}
}
