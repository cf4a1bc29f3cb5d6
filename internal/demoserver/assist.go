package demoserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/meetvaani/vaani/internal/config"
	"github.com/meetvaani/vaani/internal/observability/logging"
)

const rewriteTimeout = 6 * time.Second

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"ta": "Tamil",
	"te": "Telugu",
}

// Assist rewrites canned replies in the assistant persona through an
// ark chat model. The classifier stays in charge of intent and
// confidence; the model only rephrases the factual answer.
type Assist struct {
	chain compose.Runnable[map[string]any, *schema.Message]
	log   zerolog.Logger
}

// NewAssist compiles the rewrite chain. Call only when ARK credentials
// are configured (cfg.Enabled()).
func NewAssist(ctx context.Context, cfg config.AIConfig) (*Assist, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rewrite chain: %w", err)
	}

	return &Assist{
		chain: runnable,
		log:   logging.WithComponent("assist"),
	}, nil
}

// Rewrite rephrases the canned reply for the customer's question. An
// empty result or any model failure means the caller keeps the canned
// text.
func (a *Assist) Rewrite(ctx context.Context, userQuery, cannedReply, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, rewriteTimeout)
	defer cancel()

	input := map[string]any{
		"system": a.buildSystemPrompt(language),
		"query": fmt.Sprintf("The customer asked: %q\nThe factual answer is: %q\nRephrase the answer for the customer.",
			userQuery, cannedReply),
	}

	response, err := a.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run rewrite chain: %w", err)
	}

	text := strings.TrimSpace(response.Content)
	a.log.Debug().Str("language", language).Int("length", len(text)).Msg("reply rewritten")
	return text, nil
}

func (a *Assist) buildSystemPrompt(language string) string {
	name, ok := languageNames[language]
	if !ok {
		name = "English"
	}

	var builder strings.Builder
	builder.WriteString("You are Vaani, a friendly telecom customer assistant for an Indian mobile network. ")
	builder.WriteString("Rephrase the factual answer conversationally in ")
	builder.WriteString(name)
	builder.WriteString(". Keep every number, amount and date from the factual answer exactly as given. ")
	builder.WriteString("Answer in at most two short sentences and never invent information.")
	return builder.String()
}
