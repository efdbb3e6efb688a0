package handler

import (
	"log/slog"

	"github.com/studioshot/headshot-be/internal/api/storage"
	"github.com/studioshot/headshot-be/shared/postgresql"
	"github.com/studioshot/headshot-be/shared/rabbitmq"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger       *slog.Logger
	DBClient     *postgresql.Client
	RabbitClient *rabbitmq.Client
}

// OrderHandler handles checkout intake and gallery reads
type OrderHandler struct {
	logger       *slog.Logger
	storage      *storage.Storage
	rabbitClient *rabbitmq.Client
}

// NewOrderHandler creates a new OrderHandler instance
func NewOrderHandler(deps *Dependencies) *OrderHandler {
	return &OrderHandler{
		logger:       deps.Logger,
		storage:      storage.NewStorage(deps.DBClient),
		rabbitClient: deps.RabbitClient,
	}
}
