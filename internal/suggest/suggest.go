// ABOUTME: Best-effort AI note suggestion via an OpenAI-compatible chat model
// ABOUTME: Failures are surfaced to callers who log and degrade, never block

package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Config holds connection settings for the suggestion model.
type Config struct {
	APIKey  string
	BaseURL string // any OpenAI-compatible endpoint
	Model   string
}

// Suggester proposes note text for a freshly uploaded file. It is an
// optional collaborator: the registry works identically without it.
type Suggester struct {
	model model.BaseChatModel
}

const systemPrompt = "You help organize a personal file library. " +
	"Given a file name and mime type, propose one short note (a single sentence) " +
	"describing what the file likely contains. Reply with the note only."

// New connects to the configured chat model.
func New(ctx context.Context, cfg Config) (*Suggester, error) {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat model: %w", err)
	}

	return &Suggester{model: cm}, nil
}

// Suggest returns proposed note text for the given file. Any error is
// non-fatal by contract; callers log it and move on.
func (s *Suggester) Suggest(ctx context.Context, name, mimeType string) (string, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(fmt.Sprintf("File name: %s\nMime type: %s", name, mimeType)),
	}

	out, err := s.model.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("generating suggestion: %w", err)
	}

	return strings.TrimSpace(out.Content), nil
}
