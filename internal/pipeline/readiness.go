package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/studioshot/headshot-be/internal/provider"
)

// waitForModel polls the provider until the model reports trained. The
// model counts as ready when its status is ready or a trained timestamp
// is present. A failed status aborts immediately; anything else keeps
// polling until the bound.
func (p *Pipeline) waitForModel(ctx context.Context, modelHandle string) error {
	_, err := poll(ctx, p.sleep, p.cfg.ModelPollInterval, p.cfg.ModelPollAttempts,
		func(ctx context.Context) (struct{}, bool, error) {
			status, err := p.provider.GetModelStatus(ctx, modelHandle)
			if err != nil {
				p.logger.Warn("Failed to query model status, retrying",
					slog.String("model_handle", modelHandle),
					slog.String("error", err.Error()),
				)
				return struct{}{}, false, nil
			}

			if status.Status == provider.ModelStatusFailed {
				return struct{}{}, false, fmt.Errorf("%w: model %s", ErrModelFailed, modelHandle)
			}
			if status.Status == provider.ModelStatusReady || status.TrainedAt != nil {
				return struct{}{}, true, nil
			}
			return struct{}{}, false, nil
		})

	if errors.Is(err, ErrPollTimeout) {
		return fmt.Errorf("%w: model %s never became ready", ErrModelTimeout, modelHandle)
	}
	return err
}
