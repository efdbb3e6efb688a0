package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPrompts_CapsToLimit(t *testing.T) {
	over := make([]string, 20)
	for i := range over {
		over[i] = fmt.Sprintf("prompt %d", i+1)
	}

	p, _ := newTestPipeline(t, Config{}, func(o *Options, d *testDeps) {
		d.prompts.prompts = over
	})

	prompts, err := p.fetchPrompts(context.Background(), testJob())
	require.NoError(t, err)
	require.Len(t, prompts, 15)

	// The first fifteen, in order.
	assert.Equal(t, "prompt 1", prompts[0])
	assert.Equal(t, "prompt 15", prompts[14])
}

func TestFetchPrompts_DropsBlankEntries(t *testing.T) {
	p, _ := newTestPipeline(t, Config{}, func(o *Options, d *testDeps) {
		d.prompts.prompts = []string{"  first  ", "", "   ", "second"}
	})

	prompts, err := p.fetchPrompts(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, prompts)
}

func TestFetchPrompts_SourceErrorIsFatal(t *testing.T) {
	p, _ := newTestPipeline(t, Config{}, func(o *Options, d *testDeps) {
		d.prompts.err = fmt.Errorf("llm unavailable")
	})

	_, err := p.fetchPrompts(context.Background(), testJob())
	require.ErrorIs(t, err, ErrPromptGeneration)
	assert.True(t, IsFatal(err))
}

func TestFetchPrompts_EmptyResultIsFatal(t *testing.T) {
	tests := []struct {
		name    string
		prompts []string
	}{
		{name: "no prompts at all", prompts: nil},
		{name: "only blanks", prompts: []string{"", "  ", "\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPipeline(t, Config{}, func(o *Options, d *testDeps) {
				d.prompts.prompts = tt.prompts
			})

			_, err := p.fetchPrompts(context.Background(), testJob())
			require.ErrorIs(t, err, ErrPromptGeneration)
		})
	}
}
