// Package visual decides whether an assistant reply warrants a chart
// card and fetches the rendered image from the backend. Failures are
// deliberately quiet: a reply renders fine without its visual.
package visual

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/meetvaani/vaani/internal/backend"
	"github.com/meetvaani/vaani/internal/model/chat"
	"github.com/meetvaani/vaani/internal/observability/logging"
	"github.com/meetvaani/vaani/internal/observability/metrics"
)

// Visual template identifiers understood by the backend.
const (
	TemplatePlanComparison = "plan_comparison"
	TemplateAccountSummary = "account_summary"
	TemplateReceipt        = "receipt"
)

// TemplateFor maps a reply to its visual template. The intent decides;
// the reply text is only consulted when the intent is missing or
// unknown. An empty result means no visual applies.
func TemplateFor(intent, text string) string {
	probe := strings.ToLower(strings.TrimSpace(intent))
	if probe == "" || probe == "unknown" {
		probe = strings.ToLower(text)
	}

	switch {
	case containsAny(probe, "compare", "comparison", "plan"):
		return TemplatePlanComparison
	case containsAny(probe, "balance", "account"):
		return TemplateAccountSummary
	case containsAny(probe, "recharge", "payment", "bill", "receipt"):
		return TemplateReceipt
	}
	return ""
}

func containsAny(probe string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(probe, keyword) {
			return true
		}
	}
	return false
}

// Backend is the visual-generation surface of the backend client.
type Backend interface {
	GenerateVisual(ctx context.Context, req backend.VisualRequest) (*backend.VisualResponse, error)
}

// Generator fetches visuals for replies that warrant one.
type Generator struct {
	backend Backend
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewGenerator builds a generator on top of the backend client.
func NewGenerator(b Backend) *Generator {
	return &Generator{
		backend: b,
		log:     logging.WithComponent("visual"),
		metrics: metrics.DefaultMetrics,
	}
}

// Render returns the visual for a reply, or nil when no template
// applies or generation fails.
func (g *Generator) Render(ctx context.Context, intent, replyText, language string) *chat.Visual {
	template := TemplateFor(intent, replyText)
	if template == "" {
		return nil
	}

	resp, err := g.backend.GenerateVisual(ctx, backend.VisualRequest{
		VisualType: template,
		Data: map[string]any{
			"intent": intent,
			"text":   replyText,
		},
		Language: language,
	})
	if err != nil {
		g.metrics.RecordVisual(template, err)
		g.log.Debug().Err(err).Str("template", template).Msg("visual generation failed")
		return nil
	}

	g.metrics.RecordVisual(template, nil)

	kind := resp.Type
	if kind == "" {
		kind = template
	}
	return &chat.Visual{ImageData: resp.Image, Kind: kind}
}
