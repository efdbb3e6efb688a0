package worker

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/studioshot/headshot-be/internal/pipeline"
)

func TestShouldRequeueJob(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		requeue bool
	}{
		{
			name:    "context canceled during shutdown",
			err:     context.Canceled,
			requeue: true,
		},
		{
			name:    "deadline exceeded",
			err:     context.DeadlineExceeded,
			requeue: true,
		},
		{
			name:    "wrapped cancellation",
			err:     fmt.Errorf("job interrupted: %w", context.Canceled),
			requeue: true,
		},
		{
			name:    "upload timeout goes to the DLQ",
			err:     pipeline.ErrUploadTimeout,
			requeue: false,
		},
		{
			name:    "model creation failure goes to the DLQ",
			err:     pipeline.ErrModelCreation,
			requeue: false,
		},
		{
			name:    "model training failure goes to the DLQ",
			err:     fmt.Errorf("job failed: %w", pipeline.ErrModelFailed),
			requeue: false,
		},
		{
			name:    "model timeout goes to the DLQ",
			err:     pipeline.ErrModelTimeout,
			requeue: false,
		},
		{
			name:    "prompt generation failure goes to the DLQ",
			err:     pipeline.ErrPromptGeneration,
			requeue: false,
		},
		{
			name:    "arbitrary error goes to the DLQ",
			err:     fmt.Errorf("something unexpected"),
			requeue: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.requeue, shouldRequeueJob(tt.err))
		})
	}
}
