package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// fetchPrompts asks the prompt source for the order's prompt list and
// caps it to the first PromptLimit entries regardless of how many came
// back. Blank entries are dropped before capping. An empty result aborts
// the job.
func (p *Pipeline) fetchPrompts(ctx context.Context, job Job) ([]string, error) {
	raw, err := p.prompts.Prompts(ctx, job.OrderID, job.Variant)
	if err != nil {
		return nil, fmt.Errorf("%w: order %s: %v", ErrPromptGeneration, job.OrderID, err)
	}

	prompts := make([]string, 0, len(raw))
	for _, text := range raw {
		if text = strings.TrimSpace(text); text != "" {
			prompts = append(prompts, text)
		}
	}
	if len(prompts) == 0 {
		return nil, fmt.Errorf("%w: order %s: source returned no usable prompts", ErrPromptGeneration, job.OrderID)
	}

	if len(prompts) > p.cfg.PromptLimit {
		p.logger.Info("Capping prompt list",
			slog.String("order_id", job.OrderID),
			slog.Int("returned", len(prompts)),
			slog.Int("limit", p.cfg.PromptLimit),
		)
		prompts = prompts[:p.cfg.PromptLimit]
	}

	return prompts, nil
}
