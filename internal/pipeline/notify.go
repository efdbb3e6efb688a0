package pipeline

import (
	"context"
	"log/slog"
)

// notifyCompletion sends the single "assets ready" notification once all
// prompts have been attempted. Notification problems are logged and
// never fail the job: the watchdog provides the second chance.
func (p *Pipeline) notifyCompletion(ctx context.Context, job Job) {
	gallery, err := p.store.GalleryURLs(ctx, job.AssetGroupID)
	if err != nil {
		p.logger.Error("Failed to load gallery for notification",
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
	}
	if err := p.notifier.Send(ctx, n); err != nil {
		p.logger.Error("Failed to send completion notification",
			slog.String("asset_group_id", job.AssetGroupID),
			slog.String("contact_email", contact.Email),
			slog.String("error", err.Error()),
		)
		return
	}

	p.logger.Info("Completion notification sent",
		slog.String("asset_group_id", job.AssetGroupID),
		slog.Int("gallery_size", len(gallery)),
	)
}

// resolveContact picks the notification recipient: the customer's stored
// profile when one exists, else the contact captured on the checkout
// session at payment time.
func (p *Pipeline) resolveContact(ctx context.Context, job Job) Contact {
	contact, err := p.store.CustomerContact(ctx, job.CustomerID)
	if err != nil {
		p.logger.Warn("Failed to load customer contact",
			slog.String("customer_id", job.CustomerID),
			slog.String("error", err.Error()),
		)
	}
	if contact != nil {
		return *contact
	}

	contact, err = p.store.SessionContact(ctx, job.SessionRef)
	if err != nil {
		p.logger.Warn("Failed to load session contact",
			slog.String("session_ref", job.SessionRef),
			slog.String("error", err.Error()),
		)
	}
	if contact != nil {
		return *contact
	}

	p.logger.Warn("No contact found for order",
		slog.String("order_id", job.OrderID),
		slog.String("customer_id", job.CustomerID),
	)
	return Contact{}
}
