// File: internal/llmclient/hints.go

// Package llmclient provides the optional model-assisted selector hint. The
// resolution engine consults it as a last resort after every structural and
// text cascade has missed; it is disabled by default and the engine is fully
// functional without it.
package llmclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/xkilldash9x/replay-cli/internal/config"
)

const systemPrompt = `You are a CSS selector generator for browser automation.
Given an outline of a page's interactive elements and a description of a target
element, respond with exactly one CSS selector that matches the target.
Respond with the selector only: no explanation, no markdown, no code fences.
If no element matches, respond with the single word NONE.`

// SelectorHinter asks a Gemini model for one CSS selector matching a
// described element on a page outline.
type SelectorHinter struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// New builds a hinter from configuration. Returns nil without error when the
// hint is disabled; callers treat a nil hinter as "no provider".
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*SelectorHinter, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm hint enabled but no API key configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &SelectorHinter{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.APITimeout,
		logger:  logger.Named("llm_client.gemini"),
	}, nil
}

// SuggestSelector asks the model for a selector matching the goal on the
// given DOM outline. An empty string with nil error means the model declined.
func (h *SelectorHinter) SuggestSelector(ctx context.Context, goal, domOutline string) (string, error) {
	callCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := h.client.Models.GenerateContent(
		callCtx,
		h.model,
		genai.Text(buildPrompt(goal, domOutline)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0),
		},
	)
	if err != nil {
		return "", fmt.Errorf("selector hint request failed: %w", err)
	}

	selector := sanitizeSelector(resp.Text())
	h.logger.Debug("Selector hint received",
		zap.String("selector", selector),
		zap.Duration("duration", time.Since(start)))
	return selector, nil
}

func buildPrompt(goal, domOutline string) string {
	var b strings.Builder
	b.WriteString("Target element: ")
	b.WriteString(goal)
	b.WriteString("\n\nPage outline:\n")
	b.WriteString(domOutline)
	return b.String()
}

// sanitizeSelector strips the decoration models wrap answers in despite the
// instructions: code fences, backticks, surrounding prose lines. Only the
// first plausible selector line survives.
func sanitizeSelector(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "```css")
		line = strings.TrimPrefix(line, "```")
		line = strings.Trim(line, "`")
		line = strings.TrimSpace(line)
		if line == "" || strings.EqualFold(line, "NONE") {
			continue
		}
		return line
	}
	return ""
}
