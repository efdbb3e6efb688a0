package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll_SucceedsMidway(t *testing.T) {
	sleeps := &sleepCounter{}
	checks := 0

	got, err := poll(context.Background(), sleeps.sleep, time.Second, 10,
		func(ctx context.Context) (string, bool, error) {
			checks++
			if checks == 3 {
				return "ready", true, nil
			}
			return "", false, nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ready", got)
	assert.Equal(t, 3, checks)
	// Sleeps happen between attempts only.
	assert.Equal(t, 2, sleeps.count())
}

func TestPoll_TimesOutAfterExactlyMaxAttempts(t *testing.T) {
	sleeps := &sleepCounter{}
	checks := 0

	_, err := poll(context.Background(), sleeps.sleep, time.Second, 5,
		func(ctx context.Context) (int, bool, error) {
			checks++
			return 0, false, nil
		})

	require.ErrorIs(t, err, ErrPollTimeout)
	assert.Equal(t, 5, checks)
	// No sleep after the final attempt.
	assert.Equal(t, 4, sleeps.count())
}

func TestPoll_CheckErrorAbortsImmediately(t *testing.T) {
	sleeps := &sleepCounter{}
	boom := fmt.Errorf("hard failure")
	checks := 0

	_, err := poll(context.Background(), sleeps.sleep, time.Second, 10,
		func(ctx context.Context) (int, bool, error) {
			checks++
			return 0, false, boom
		})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, checks)
	assert.Equal(t, 0, sleeps.count())
}

func TestPoll_SleepErrorPropagates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sleeps := &sleepCounter{}
	_, err := poll(ctx, sleeps.sleep, time.Second, 10,
		func(ctx context.Context) (int, bool, error) {
			return 0, false, nil
		})

	require.ErrorIs(t, err, context.Canceled)
}

func TestSleepContext(t *testing.T) {
	t.Run("returns after the duration", func(t *testing.T) {
		err := sleepContext(context.Background(), time.Millisecond)
		require.NoError(t, err)
	})

	t.Run("returns early on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := sleepContext(ctx, time.Minute)
		require.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}
