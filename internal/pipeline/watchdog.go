package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// armWatchdog schedules the completeness re-check to fire once, a fixed
// delay after job start, independent of how far the main path has come.
// It deliberately does not coordinate with the completion notifier: both
// can fire for the same order, and the downstream automation treats the
// watchdog's message as a follow-up.
func (p *Pipeline) armWatchdog(ctx context.Context, job Job) {
	p.watchdogs.Add(1)
	go func() {
		defer p.watchdogs.Done()

		select {
		case <-ctx.Done():
			return
		case <-p.after(p.cfg.WatchdogDelay):
		}

		p.checkCompleteness(ctx, job)
	}()
}

// checkCompleteness re-counts the group's persisted images against the
// full target and sends the gallery notification, carrying a shortfall
// note when the count is below target.
func (p *Pipeline) checkCompleteness(ctx context.Context, job Job) {
	count, err := p.store.CountGeneratedAssets(ctx, job.AssetGroupID)
	if err != nil {
		p.logger.Error("Watchdog failed to count generated assets",
			slog.String("asset_group_id", job.AssetGroupID),
			slog.String("error", err.Error()),
		)
		return
	}

	target := p.cfg.PromptLimit * p.cfg.ImagesPerPrompt

	var note string
	if count < target {
		note = fmt.Sprintf("gallery incomplete: %d of %d images generated, %d missing", count, target, target-count)
		p.logger.Warn("Watchdog found incomplete gallery",
			slog.String("asset_group_id", job.AssetGroupID),
			slog.Int("count", count),
			slog.Int("target", target),
		)
	}

	gallery, err := p.store.GalleryURLs(ctx, job.AssetGroupID)
	if err != nil {
		p.logger.Error("Watchdog failed to load gallery",
			slog.String("asset_group_id", job.AssetGroupID),
			slog.String("error", err.Error()),
		)
		return
	}

	contact := p.resolveContact(ctx, job)

	n := Notification{
		ContactEmail: contact.Email,
		FirstName:    contact.FirstName,
		LastName:     contact.LastName,
		AssetGroupID: job.AssetGroupID,
		GalleryURLs:  gallery,
		Note:         note,
	}
	if err := p.notifier.Send(ctx, n); err != nil {
		p.logger.Error("Watchdog failed to send notification",
			slog.String("asset_group_id", job.AssetGroupID),
			slog.String("error", err.Error()),
		)
		return
	}

	p.logger.Info("Watchdog notification sent",
		slog.String("asset_group_id", job.AssetGroupID),
		slog.Int("count", count),
		slog.Int("target", target),
		slog.Bool("degraded", note != ""),
	)
}
