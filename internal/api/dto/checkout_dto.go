package dto

// ContactDTO is the purchaser contact carried on the payment session.
type ContactDTO struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CheckoutCompletedRequest is the payload the payment webhook relay
// posts once a checkout session is paid. The IDs mirror the metadata
// attached to the session at checkout creation.
type CheckoutCompletedRequest struct {
	OrderID      string     `json:"order_id" binding:"required"`
	CustomerID   string     `json:"customer_id" binding:"required"`
	AssetGroupID string     `json:"asset_group_id" binding:"required"`
	Variant      string     `json:"variant" binding:"required"`
	AssetKind    string     `json:"asset_kind"`
	SessionRef   string     `json:"session_ref" binding:"required"`
	Contact      ContactDTO `json:"contact" binding:"required"`
}

// GalleryResponse lists the generated images for an asset group.
type GalleryResponse struct {
	AssetGroupID string   `json:"asset_group_id"`
	Count        int      `json:"count"`
	ImageURLs    []string `json:"image_urls"`
}
