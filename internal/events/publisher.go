// Package events ships completed-turn records to Kafka for analytics.
// Publishing is best effort: by the time an event exists the turn has
// already finished, so failures are logged and swallowed upstream.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/observability/metrics"
)

// TurnEvent is the analytics record emitted after each turn.
type TurnEvent struct {
	SessionID             string    `json:"sessionId"`
	Query                 string    `json:"query"`
	Intent                string    `json:"intent"`
	Confidence            float64   `json:"confidence"`
	Language              string    `json:"language"`
	VoiceInitiated        bool      `json:"voiceInitiated"`
	Containment           bool      `json:"containment"`
	ProcessingTimeSeconds float64   `json:"processingTimeSeconds"`
	CostUSD               float64   `json:"costUsd"`
	Outcome               string    `json:"outcome"`
	CreatedAt             time.Time `json:"createdAt"`
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers []string
	Topic   string
	Enabled bool
}

// Publisher writes turn events to a Kafka topic. Without brokers it
// runs in log-only mode so the rest of the widget never notices.
type Publisher struct {
	writer  *kafka.Writer
	topic   string
	enabled bool
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// New creates a turn event publisher.
func New(cfg *Config) *Publisher {
	logger := logging.WithComponent("events")
	m := metrics.DefaultMetrics

	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka disabled, using log-only mode")
		p := &Publisher{enabled: false, metrics: m, log: logger}
		if cfg != nil {
			p.topic = cfg.Topic
		}
		return p
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writer:  writer,
		topic:   cfg.Topic,
		enabled: true,
		metrics: m,
		log:     logger,
	}
}

// Publish ships one turn event, keyed by session so a session's turns
// stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, event TurnEvent) error {
	start := time.Now()

	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Msg("failed to marshal turn event")
		return err
	}

	p.log.Debug().
		Str("session_id", event.SessionID).
		Str("intent", event.Intent).
		RawJSON("payload", payload).
		Msg("publishing turn event")

	if !p.enabled || p.writer == nil {
		p.metrics.RecordEventPublish(nil, time.Since(start))
		return nil
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte("turn")},
		},
	}

	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.log.Error().Err(err).Str("topic", p.topic).Msg("failed to write to Kafka")
		p.metrics.RecordEventPublish(err, time.Since(start))
		return err
	}

	p.metrics.RecordEventPublish(nil, time.Since(start))
	return nil
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
