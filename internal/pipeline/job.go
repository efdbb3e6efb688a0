package pipeline

import (
	"strings"
	"time"
)

// Job is one enqueued generation request for a paid order. It is built
// from the queue entry published at checkout completion and is immutable
// once enqueued.
type Job struct {
	OrderID      string `json:"order_id"`
	CustomerID   string `json:"customer_id"`
	AssetGroupID string `json:"asset_group_id"`
	Variant      string `json:"variant"`
	AssetKind    string `json:"asset_kind"`
	SessionRef   string `json:"session_ref"`
}

// GeneratedAsset is one append-only row per produced image.
type GeneratedAsset struct {
	ID           string
	PromptRef    string
	AssetGroupID string
	ImageURL     string
	SourceRef    string
	CreatedAt    time.Time
}

// Contact is the notification recipient resolved for an order.
type Contact struct {
	Email     string
	FirstName string
	LastName  string
}

// Notification is the outbound "assets ready" payload.
type Notification struct {
	ContactEmail string   `json:"contact_email"`
	FirstName    string   `json:"first_name"`
	LastName     string   `json:"last_name"`
	AssetGroupID string   `json:"asset_group_id"`
	GalleryURLs  []string `json:"gallery_urls"`
	Note         string   `json:"note,omitempty"`
}

// ClassLabel derives the provider class label for an asset group. The
// label must be stable across retries and duplicate deliveries, so it is
// a pure function of the group ID: lowercased, with runs of
// non-alphanumeric characters collapsed to a single dash.
func ClassLabel(assetGroupID string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(assetGroupID) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}
