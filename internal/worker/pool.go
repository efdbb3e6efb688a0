package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// spawnWorkerPool spawns N processing goroutines based on the
// concurrency configuration.
func (w *Worker) spawnWorkerPool(ctx context.Context) {
	w.logger.Info("Spawning worker pool",
		slog.Int("concurrency", w.concurrency),
		slog.String("worker_id", w.workerID),
	)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each pool goroutine: pop
// one job, run it through the pipeline to completion, acknowledge, and
// only then pop the next.
func (w *Worker) workerLoop(ctx context.Context, workerNum int) {
	defer w.wg.Done()

	workerName := fmt.Sprintf("%s-%d", w.workerID, workerNum)
	w.logger.Info("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			w.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-w.jobsChan:
			if !ok {
				w.logger.Info("Worker goroutine stopping - jobsChan closed",
					slog.String("worker_name", workerName),
				)
				return
			}

			w.logger.Info("Worker received job",
				slog.String("worker_name", workerName),
				slog.String("order_id", msg.Job.OrderID),
				slog.String("asset_group_id", msg.Job.AssetGroupID),
			)

			err := w.pipeline.Run(ctx, msg.Job)

			channel := w.rabbitClient.GetChannel()
			if channel == nil {
				w.logger.Error("Failed to get RabbitMQ channel for ACK/NACK",
					slog.String("worker_name", workerName),
					slog.String("order_id", msg.Job.OrderID),
				)
				continue
			}

			if err != nil {
				requeue := shouldRequeueJob(err)

				w.logger.Error("Job processing failed",
					slog.String("worker_name", workerName),
					slog.String("order_id", msg.Job.OrderID),
					slog.Bool("fatal", !requeue),
					slog.String("error", err.Error()),
				)

				if nackErr := channel.Nack(msg.DeliveryTag, false, requeue); nackErr != nil {
					w.logger.Error("Failed to NACK message",
						slog.String("worker_name", workerName),
						slog.String("order_id", msg.Job.OrderID),
						slog.String("error", nackErr.Error()),
					)
				} else {
					w.logger.Info("Message NACKed",
						slog.String("worker_name", workerName),
						slog.String("order_id", msg.Job.OrderID),
						slog.Bool("requeue", requeue),
					)
				}
			} else {
				// Explicit acknowledgment only after successful
				// completion; a crash before this point requeues the
				// delivery instead of losing it.
				if ackErr := channel.Ack(msg.DeliveryTag, false); ackErr != nil {
					w.logger.Error("Failed to ACK message",
						slog.String("worker_name", workerName),
						slog.String("order_id", msg.Job.OrderID),
						slog.String("error", ackErr.Error()),
					)
				} else {
					w.logger.Info("Job completed successfully",
						slog.String("worker_name", workerName),
						slog.String("order_id", msg.Job.OrderID),
					)
				}
			}
		}
	}
}

// shouldRequeueJob decides the NACK requeue flag. Fatal pipeline errors
// (upload timeout, model creation/training failures, prompt generation)
// are deterministic: requeueing would replay the same failure, so they
// go to the DLQ. Only an interrupted job - context canceled during
// shutdown - is worth another consumer's attempt.
func shouldRequeueJob(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
