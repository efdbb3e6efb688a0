package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studioshot/headshot-be/internal/api/dto"
)

// GetGallery handles GET /api/v1/asset-groups/:asset_group_id/gallery
// Returns the generated images persisted so far for the group. Serving
// whatever exists, even mid-generation, is intentional: galleries fill
// in incrementally.
func (h *OrderHandler) GetGallery(c *gin.Context) {
	assetGroupID := c.Param("asset_group_id")
	if assetGroupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "asset_group_id is required",
		})
		return
	}

	urls, err := h.storage.GalleryURLs(c.Request.Context(), assetGroupID)
	if err != nil {
		h.logger.Error("Failed to load gallery",
			slog.String("asset_group_id", assetGroupID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load gallery",
		})
		return
	}

	c.JSON(http.StatusOK, dto.GalleryResponse{
		AssetGroupID: assetGroupID,
		Count:        len(urls),
		ImageURLs:    urls,
	})
}
