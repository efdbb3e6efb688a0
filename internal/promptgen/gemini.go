// Package promptgen is the LLM-backed prompt source: it asks Gemini for
// a themed list of portrait prompts for an order's variant.
package promptgen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// Gemini generates prompt lists through the Gemini API.
type Gemini struct {
	client      *genai.Client
	model       string
	promptCount int
	logger      *slog.Logger
}

// NewGemini creates a Gemini-backed prompt source.
func NewGemini(ctx context.Context, apiKey, model string, promptCount int, logger *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if model == "" {
		model = defaultModel
	}
	if promptCount <= 0 {
		promptCount = 15
	}

	return &Gemini{
		client:      client,
		model:       model,
		promptCount: promptCount,
		logger:      logger,
	}, nil
}

// Prompts returns an ordered list of generation prompts for the order.
// The pipeline re-caps the list, so overshoot here is harmless.
func (g *Gemini) Prompts(ctx context.Context, orderID, variant string) ([]string, error) {
	instruction := buildInstruction(variant, g.promptCount)

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(instruction),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.9),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	prompts := parsePromptList(result.Text())
	if len(prompts) == 0 {
		return nil, fmt.Errorf("gemini returned no usable prompts for order %s", orderID)
	}

	g.logger.Info("Prompt list generated",
		slog.String("order_id", orderID),
		slog.String("variant", variant),
		slog.Int("count", len(prompts)),
	)
	return prompts, nil
}

func buildInstruction(variant string, count int) string {
	return fmt.Sprintf(
		"Write %d distinct photography prompts for professional headshots of a %s. "+
			"Each prompt describes one scene: outfit, backdrop, lighting and camera angle. "+
			"Return exactly one prompt per line with no numbering and no extra commentary.",
		count, variant,
	)
}

// parsePromptList splits the model's reply into one prompt per line,
// stripping the numbering and bullets Gemini adds despite being told
// not to.
func parsePromptList(raw string) []string {
	var prompts []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•")
		line = strings.TrimSpace(line)

		// Strip leading "1." / "12)" style numbering.
		if i := strings.IndexAny(line, ".)"); i > 0 && i <= 3 {
			if isDigits(line[:i]) {
				line = strings.TrimSpace(line[i+1:])
			}
		}

		if line != "" {
			prompts = append(prompts, line)
		}
	}
	return prompts
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
