package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studioshot/headshot-be/internal/provider"
)

// Fixed fine-tuning parameters, identical for every group.
var defaultTrainingParams = provider.TrainingParams{
	BaseModel: "sdxl-base-1.0",
	Steps:     1200,
}

// provisionModel obtains the provider-side fine-tuned model handle for
// the job's asset group, creating it at most once. A stored handle is
// reused as-is. Otherwise a create-model request is issued and the
// returned handle persisted before returning. Persistence is a
// compare-and-swap on the group's null handle, so concurrent processing
// of the same group (duplicate delivery) cannot store two handles: the
// loser adopts the winner's handle and its own provider model is left to
// the provider's idle cleanup.
func (p *Pipeline) provisionModel(ctx context.Context, job Job, uploadURLs []string) (string, error) {
	stored, err := p.store.ModelHandle(ctx, job.AssetGroupID)
	if err != nil {
		return "", fmt.Errorf("read model handle for group %s: %w", job.AssetGroupID, err)
	}
	if stored != "" {
		p.logger.Info("Reusing provisioned model",
			slog.String("asset_group_id", job.AssetGroupID),
			slog.String("model_handle", stored),
		)
		return stored, nil
	}

	label := ClassLabel(job.AssetGroupID)
	modelID, err := p.provider.CreateModel(ctx, provider.CreateModelRequest{
		Name:            job.AssetGroupID,
		Title:           fmt.Sprintf("%s (%s)", job.AssetGroupID, job.Variant),
		SourceAssetURLs: uploadURLs,
		ClassLabel:      label,
		TrainingParams:  defaultTrainingParams,
	})
	if err != nil {
		return "", fmt.Errorf("%w: group %s: %v", ErrModelCreation, job.AssetGroupID, err)
	}

	won, err := p.store.SetModelHandle(ctx, job.AssetGroupID, modelID)
	if err != nil {
		return "", fmt.Errorf("persist model handle for group %s: %w", job.AssetGroupID, err)
	}
	if !won {
		// Lost the swap: another worker provisioned this group first.
		existing, err := p.store.ModelHandle(ctx, job.AssetGroupID)
		if err != nil {
			return "", fmt.Errorf("re-read model handle for group %s: %w", job.AssetGroupID, err)
		}
		if existing != "" {
			p.logger.Warn("Concurrent provisioning detected, adopting stored model",
				slog.String("asset_group_id", job.AssetGroupID),
				slog.String("stored_handle", existing),
				slog.String("discarded_handle", modelID),
			)
			return existing, nil
		}
	}

	p.logger.Info("Model provisioned",
		slog.String("asset_group_id", job.AssetGroupID),
		slog.String("model_handle", modelID),
		slog.String("class_label", label),
	)
	return modelID, nil
}
