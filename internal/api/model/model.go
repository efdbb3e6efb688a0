package model

import "time"

// CheckoutSession stores the contact captured from the payment webhook.
// The pipeline's notifier falls back to it when a customer has no local
// profile.
type CheckoutSession struct {
	SessionRef   string    `db:"session_ref"`
	OrderID      string    `db:"order_id"`
	CustomerID   string    `db:"customer_id"`
	AssetGroupID string    `db:"asset_group_id"`
	Variant      string    `db:"variant"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
