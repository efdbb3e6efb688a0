package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// waitForUploads blocks until at least one uploaded input asset exists
// for the group and returns every URL found on that first non-empty
// read. It waits for non-emptiness only, never for a target count: the
// intake flow writes all uploads before checkout completes, so one row
// means the batch is there. Transient read errors count as an
// unsuccessful attempt and keep the gate polling.
func (p *Pipeline) waitForUploads(ctx context.Context, assetGroupID string) ([]string, error) {
	urls, err := poll(ctx, p.sleep, p.cfg.UploadPollInterval, p.cfg.UploadPollAttempts,
		func(ctx context.Context) ([]string, bool, error) {
			urls, err := p.store.UploadedAssetURLs(ctx, assetGroupID)
			if err != nil {
				p.logger.Warn("Failed to read uploaded assets, retrying",
					slog.String("asset_group_id", assetGroupID),
					slog.String("error", err.Error()),
				)
				return nil, false, nil
			}
			if len(urls) == 0 {
				return nil, false, nil
			}
			return urls, true, nil
		})

	if errors.Is(err, ErrPollTimeout) {
		return nil, fmt.Errorf("%w: no input assets for group %s", ErrUploadTimeout, assetGroupID)
	}
	if err != nil {
		return nil, err
	}
	return urls, nil
}
