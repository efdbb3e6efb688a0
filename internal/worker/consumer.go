package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/studioshot/headshot-be/internal/pipeline"
)

var errInvalidJobEntry = errors.New("invalid job entry")

// setupConsumer sets up the RabbitMQ consumer with QoS and returns the
// blocking delivery channel. Delivery through the channel replaces any
// fixed-interval queue polling: the dispatcher simply blocks until the
// broker has a job.
func (w *Worker) setupConsumer(ctx context.Context) (<-chan amqp.Delivery, error) {
	channel := w.rabbitClient.GetChannel()
	if channel == nil {
		return nil, fmt.Errorf("rabbitmq channel is nil")
	}

	// Prefetch bounds the unacknowledged deliveries per consumer so slow
	// jobs do not hoard the queue.
	if err := channel.Qos(w.prefetchCount, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := w.rabbitClient.Consume(w.workerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	w.logger.Info("RabbitMQ consumer started",
		slog.String("worker_id", w.workerID),
		slog.Int("prefetch_count", w.prefetchCount),
	)

	return deliveries, nil
}

// parseJobEntry decodes and validates the queue entry published at
// checkout completion.
func parseJobEntry(body []byte) (pipeline.Job, error) {
	var job pipeline.Job
	if err := json.Unmarshal(body, &job); err != nil {
		return pipeline.Job{}, fmt.Errorf("%w: malformed JSON: %v", errInvalidJobEntry, err)
	}

	switch {
	case job.OrderID == "":
		return pipeline.Job{}, fmt.Errorf("%w: missing order_id", errInvalidJobEntry)
	case job.CustomerID == "":
		return pipeline.Job{}, fmt.Errorf("%w: missing customer_id", errInvalidJobEntry)
	case job.AssetGroupID == "":
		return pipeline.Job{}, fmt.Errorf("%w: missing asset_group_id", errInvalidJobEntry)
	}
	return job, nil
}

// startMessageDispatcher reads broker deliveries and hands parsed jobs
// to the worker pool. It blocks until the context is canceled or the
// delivery channel closes.
func (w *Worker) startMessageDispatcher(ctx context.Context, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled")
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed")
				return
			}

			job, err := parseJobEntry(delivery.Body)
			if err != nil {
				w.logger.Error("Rejecting unparseable job entry",
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
				// Malformed entries go straight to the DLQ.
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			msg := &jobMessage{
				Job:         job,
				DeliveryTag: delivery.DeliveryTag,
			}

			select {
			case w.jobsChan <- msg:
				w.logger.Debug("Job dispatched to worker pool",
					slog.String("order_id", job.OrderID),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching job")
				// Requeue so another consumer picks it up.
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return
			}
		}
	}
}
