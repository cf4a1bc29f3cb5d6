package backend

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/observability/metrics"
)

// Poller probes /api/health on a fixed cadence and reports reachability
// changes so the UI can toggle its connectivity indicator.
type Poller struct {
	client   *Client
	interval time.Duration
	onChange func(up bool)
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

// NewPoller creates a health poller. The default cadence is 30 seconds.
func NewPoller(client *Client, interval time.Duration, onChange func(up bool)) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		client:   client,
		interval: interval,
		onChange: onChange,
		log:      logging.WithComponent("health-poller"),
		metrics:  metrics.DefaultMetrics,
	}
}

// Run probes immediately, then on every tick until the context is cancelled.
// The callback fires on the first probe and afterwards only when the
// reachability state flips.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var known bool
	var lastUp bool

	probe := func() {
		err := p.client.Health(ctx)
		up := err == nil
		p.metrics.RecordHealthCheck(up)

		if known && up == lastUp {
			return
		}
		if !up {
			p.log.Warn().Err(err).Msg("backend health check failed")
		} else if known {
			p.log.Info().Msg("backend reachable again")
		}
		known = true
		lastUp = up
		if p.onChange != nil {
			p.onChange(up)
		}
	}

	probe()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}
