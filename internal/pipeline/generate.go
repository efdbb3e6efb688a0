package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studioshot/headshot-be/internal/provider"
	"golang.org/x/sync/errgroup"
)

// triggerToken is the provider's convention for attributing a generation
// to the trained model: every prompt is prefixed with the token and the
// group's class label.
const triggerToken = "sks"

// generateAll runs the submission-and-polling loop for every prompt
// through a bounded per-job pool. Prompt-level failures never abort the
// job: the job is complete once every prompt has been attempted,
// whatever was actually produced. Insertion order of the resulting asset
// rows is irrelevant, which is what permits the parallelism.
func (p *Pipeline) generateAll(ctx context.Context, job Job, prompts []string) {
	label := ClassLabel(job.AssetGroupID)

	var g errgroup.Group
	g.SetLimit(p.cfg.PromptConcurrency)

	for i, text := range prompts {
		g.Go(func() error {
			p.generateOne(ctx, job, i+1, text, label)
			return nil
		})
	}

	// Workers never return errors; Wait only fences the pool.
	_ = g.Wait()
}

// generateOne submits a single prompt and persists whatever images it
// yielded. A rejected submission skips the prompt; a short poll accepts
// the partial output with a warning.
func (p *Pipeline) generateOne(ctx context.Context, job Job, promptNum int, text, classLabel string) {
	promptRef := fmt.Sprintf("%s/p%02d", job.OrderID, promptNum)
	logger := p.logger.With(
		slog.String("asset_group_id", job.AssetGroupID),
		slog.String("prompt_ref", promptRef),
	)

	fullText := fmt.Sprintf("%s %s, %s", triggerToken, classLabel, text)

	submissionID, err := p.provider.SubmitGeneration(ctx, provider.GenerationRequest{
		Text:            fullText,
		NumImages:       p.cfg.ImagesPerPrompt,
		Width:           p.cfg.OutputWidth,
		Height:          p.cfg.OutputHeight,
		Sampler:         p.cfg.Sampler,
		SuperResolution: true,
		FaceInpaint:     true,
	})
	if err != nil {
		logger.Error("Skipping prompt after rejected submission",
			slog.String("error", fmt.Errorf("%w: %v", ErrPromptSubmission, err).Error()),
		)
		return
	}

	images := p.pollImages(ctx, submissionID, logger)
	if len(images) > p.cfg.ImagesPerPrompt {
		// An overshooting provider never pushes a prompt past its quota.
		images = images[:p.cfg.ImagesPerPrompt]
	}
	if len(images) < p.cfg.ImagesPerPrompt {
		logger.Warn("Accepting partial generation output",
			slog.String("submission_id", submissionID),
			slog.Int("images", len(images)),
			slog.Int("expected", p.cfg.ImagesPerPrompt),
		)
	}
	if len(images) == 0 {
		return
	}

	assets := make([]GeneratedAsset, 0, len(images))
	for _, url := range images {
		assets = append(assets, GeneratedAsset{
			ID:           uuid.New().String(),
			PromptRef:    promptRef,
			AssetGroupID: job.AssetGroupID,
			ImageURL:     url,
			SourceRef:    submissionID,
			CreatedAt:    time.Now().UTC(),
		})
	}

	// Persist per prompt so partial progress survives anything that
	// happens to the rest of the job. A failed insert is logged and the
	// loop moves on; rows already written for other prompts stay.
	if err := p.store.AppendGeneratedAssets(ctx, assets); err != nil {
		logger.Error("Failed to persist generated assets",
			slog.Int("count", len(assets)),
			slog.String("error", err.Error()),
		)
		return
	}

	logger.Info("Generated assets persisted", slog.Int("count", len(assets)))
}

// pollImages waits for a submission's output. One poll round is
// ImagePollAttempts checks at ImagePollInterval; if a round ends with
// fewer than ImagesPerPrompt images, the whole poll is retried up to
// ImagePollRounds rounds before the best partial result is accepted.
func (p *Pipeline) pollImages(ctx context.Context, submissionID string, logger *slog.Logger) []string {
	var best []string

	for round := 1; round <= p.cfg.ImagePollRounds; round++ {
		images, err := poll(ctx, p.sleep, p.cfg.ImagePollInterval, p.cfg.ImagePollAttempts,
			func(ctx context.Context) ([]string, bool, error) {
				images, err := p.provider.GetGenerationImages(ctx, submissionID)
				if err != nil {
					logger.Warn("Failed to query generation output, retrying",
						slog.String("submission_id", submissionID),
						slog.String("error", err.Error()),
					)
					return nil, false, nil
				}
				if len(images) > len(best) {
					best = images
				}
				if len(images) >= p.cfg.ImagesPerPrompt {
					return images, true, nil
				}
				return nil, false, nil
			})
		if err == nil {
			return images
		}
		if !errors.Is(err, ErrPollTimeout) {
			// Context canceled mid-poll; keep whatever arrived.
			return best
		}

		logger.Warn("Generation output incomplete, retrying poll",
			slog.String("error", fmt.Errorf("%w: submission %s", ErrImagePollTimeout, submissionID).Error()),
			slog.Int("round", round),
			slog.Int("max_rounds", p.cfg.ImagePollRounds),
			slog.Int("images_so_far", len(best)),
		)
	}

	return best
}
