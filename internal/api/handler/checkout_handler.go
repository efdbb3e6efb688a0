package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studioshot/headshot-be/internal/api/dto"
	"github.com/studioshot/headshot-be/internal/api/model"
	"github.com/studioshot/headshot-be/internal/pipeline"
)

// CheckoutCompleted handles POST /api/v1/checkout/completed
// Records the paid session's contact and enqueues exactly one generation
// job carrying the session metadata.
func (h *OrderHandler) CheckoutCompleted(c *gin.Context) {
	var req dto.CheckoutCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid checkout webhook body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	now := time.Now().UTC()
	session := model.CheckoutSession{
		SessionRef:   req.SessionRef,
		OrderID:      req.OrderID,
		CustomerID:   req.CustomerID,
		AssetGroupID: req.AssetGroupID,
		Variant:      req.Variant,
		Email:        req.Contact.Email,
		FirstName:    req.Contact.FirstName,
		LastName:     req.Contact.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The session row must land before the job is visible to workers:
	// the notifier's contact fallback reads it.
	if err := h.storage.UpsertCheckoutSession(c.Request.Context(), &session); err != nil {
		h.logger.Error("Failed to store checkout session",
			slog.String("session_ref", req.SessionRef),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to store checkout session",
		})
		return
	}

	job := pipeline.Job{
		OrderID:      req.OrderID,
		CustomerID:   req.CustomerID,
		AssetGroupID: req.AssetGroupID,
		Variant:      req.Variant,
		AssetKind:    req.AssetKind,
		SessionRef:   req.SessionRef,
	}

	body, err := json.Marshal(job)
	if err != nil {
		h.logger.Error("Failed to marshal job entry", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue job",
		})
		return
	}

	if err := h.rabbitClient.PublishWithRetry(c.Request.Context(), body, "application/json"); err != nil {
		h.logger.Error("Failed to publish job",
			slog.String("order_id", req.OrderID),
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to enqueue job",
		})
		return
	}

	h.logger.Info("Generation job enqueued",
		slog.String("order_id", req.OrderID),
		slog.String("asset_group_id", req.AssetGroupID),
		slog.String("variant", req.Variant),
	)

	c.JSON(http.StatusAccepted, gin.H{
		"order_id":       req.OrderID,
		"asset_group_id": req.AssetGroupID,
		"status":         "queued",
	})
}
